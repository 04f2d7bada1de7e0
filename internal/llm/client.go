// Package llm is the model invocation boundary: a narrow completion interface
// plus the Gemini-backed implementation and a bounded retry wrapper.
package llm

import (
	"context"
	"errors"

	"tinker/internal/protocol"
)

// ErrMissingAPIKey is returned when no API key is configured. It is a startup
// error; callers should treat it as fatal rather than retrying.
var ErrMissingAPIKey = errors.New("no API key configured (set GEMINI_API_KEY)")

// Client produces one completion for a conversation. The returned string is
// the raw model text, expected to be a JSON decision document.
type Client interface {
	Complete(ctx context.Context, system string, messages []protocol.Message) (string, error)
}
