package llm

import (
	"context"
	"errors"
	"time"

	"tinker/internal/logging"
	"tinker/internal/protocol"
)

// Retry wraps a Client with a bounded retry loop and a fixed pause between
// attempts. Limit counts retries after the first attempt, so Limit 3 means at
// most four calls. Context cancellation and a missing API key end the loop
// immediately.
type Retry struct {
	Client  Client
	Limit   int
	Backoff time.Duration
}

// Complete implements Client.
func (r Retry) Complete(ctx context.Context, system string, messages []protocol.Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.Limit; attempt++ {
		if attempt > 0 {
			logging.APIWarn("retrying model call (attempt %d/%d): %v", attempt, r.Limit, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.Backoff):
			}
		}

		text, err := r.Client.Complete(ctx, system, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// The caller's context being done means the session is over, not
		// that this particular call was flaky.
		if ctx.Err() != nil {
			return "", err
		}
		if errors.Is(err, ErrMissingAPIKey) {
			return "", err
		}
	}
	return "", lastErr
}
