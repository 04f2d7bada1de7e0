// Package engine runs the step loop: ask the model for one decision, execute
// its operation, feed the result back, repeat until the model declares
// completion, the iteration cap is hit, or the model becomes unreachable.
package engine

import (
	"context"
	"fmt"
	"time"

	"tinker/internal/config"
	"tinker/internal/executor"
	"tinker/internal/llm"
	"tinker/internal/logging"
	"tinker/internal/protocol"
)

// Status is the terminal state of one task run.
type Status string

const (
	// StatusCompleted means the model declared the task finished.
	StatusCompleted Status = "completed"

	// StatusFailed means the model became unreachable after retries or the
	// run was cancelled.
	StatusFailed Status = "failed"

	// StatusCappedOut means the iteration cap was reached before completion.
	StatusCappedOut Status = "capped_out"
)

// Outcome summarizes a finished task run.
type Outcome struct {
	Status Status
	Steps  int

	// Detail is the model's closing explanation for completed runs, or the
	// failure reason otherwise.
	Detail string
}

// Engine drives the decide-execute-report loop for one project.
type Engine struct {
	client   llm.Client
	executor *executor.Executor
	cfg      config.EngineConfig
	observer Observer
}

// New creates an engine. A nil observer is replaced with NopObserver.
func New(client llm.Client, exec *executor.Executor, cfg config.EngineConfig, obs Observer) *Engine {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Engine{client: client, executor: exec, cfg: cfg, observer: obs}
}

// Run executes one task against the conversation. The task is appended as a
// user message; decisions and results are appended as the loop progresses, so
// a retained conversation carries full context into the next task.
func (e *Engine) Run(ctx context.Context, task string, conv *protocol.Conversation) (*Outcome, error) {
	conv.AppendUser(task)
	logging.Engine("task started: %.120s", task)

	for step := 1; step <= e.cfg.MaxIterations; step++ {
		raw, err := e.client.Complete(ctx, systemInstruction, conv.Messages())
		if err != nil {
			outcome := &Outcome{
				Status: StatusFailed,
				Steps:  step - 1,
				Detail: fmt.Sprintf("model unreachable: %v", err),
			}
			logging.EngineWarn("run failed at step %d: %v", step, err)
			return outcome, err
		}

		decision, err := protocol.ParseDecision(raw)
		if err != nil {
			// Bad output is a recoverable step: keep it in the transcript and
			// tell the model what was wrong so it can correct itself.
			logging.EngineWarn("step %d: rejected decision: %v", step, err)
			e.observer.Rejected(step, err)
			conv.AppendAssistant(raw)
			rejection := protocol.Failure("", "invalid decision: %v; reply with a single valid decision document", err)
			conv.AppendUser(rejection.MarshalText())
			if err := e.pause(ctx); err != nil {
				return e.cancelled(step), err
			}
			continue
		}

		conv.AppendAssistant(decision.MarshalText())
		e.observer.Decision(step, decision)

		if decision.Operation != nil {
			result := e.executor.Dispatch(ctx, decision)
			e.observer.Result(step, decision, result)
			conv.AppendUser(result.MarshalText())
		}

		if decision.Completed {
			logging.Engine("task completed in %d steps", step)
			return &Outcome{Status: StatusCompleted, Steps: step, Detail: decision.Explanation}, nil
		}

		if step < e.cfg.MaxIterations {
			if err := e.pause(ctx); err != nil {
				return e.cancelled(step), err
			}
		}
	}

	logging.EngineWarn("iteration cap reached (%d steps)", e.cfg.MaxIterations)
	return &Outcome{
		Status: StatusCappedOut,
		Steps:  e.cfg.MaxIterations,
		Detail: fmt.Sprintf("stopped after %d steps without completion", e.cfg.MaxIterations),
	}, nil
}

// pause waits the configured step delay, a crude pacing guard against rate
// limits. Cancellation wins over the delay.
func (e *Engine) pause(ctx context.Context) error {
	delay := e.cfg.StepDelayDuration()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) cancelled(step int) *Outcome {
	return &Outcome{Status: StatusFailed, Steps: step, Detail: "run cancelled"}
}
