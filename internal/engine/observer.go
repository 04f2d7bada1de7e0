package engine

import "tinker/internal/protocol"

// Observer receives step events for user-facing narration. Implementations
// must not block; they run inline with the loop.
type Observer interface {
	// Decision is called after a decision parses, before it executes.
	Decision(step int, d *protocol.Decision)

	// Result is called after the decision's operation executed.
	Result(step int, d *protocol.Decision, r *protocol.Result)

	// Rejected is called when model output failed to parse or validate. The
	// rejection is fed back to the model; the loop continues.
	Rejected(step int, err error)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) Decision(int, *protocol.Decision)                 {}
func (NopObserver) Result(int, *protocol.Decision, *protocol.Result) {}
func (NopObserver) Rejected(int, error)                              {}
