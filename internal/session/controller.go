// Package session ties a conversation, the engine, and the task log together
// for one interactive sitting. A session survives multiple tasks; whether the
// conversation carries over between them is a configuration choice.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tinker/internal/config"
	"tinker/internal/engine"
	"tinker/internal/history"
	"tinker/internal/logging"
	"tinker/internal/protocol"
)

// Controller runs tasks for one session.
type Controller struct {
	id     string
	cfg    *config.Config
	engine *engine.Engine

	// store is nil when history is disabled; recording failures are logged
	// and never fail the task.
	store *history.Store

	conv *protocol.Conversation
}

// New creates a session with a fresh conversation and a random session ID.
func New(cfg *config.Config, eng *engine.Engine, store *history.Store) *Controller {
	return &Controller{
		id:     uuid.NewString(),
		cfg:    cfg,
		engine: eng,
		store:  store,
		conv:   protocol.NewConversation(),
	}
}

// ID returns the session identifier used in logs and history rows.
func (c *Controller) ID() string {
	return c.id
}

// RunTask executes one task. With keep_conversation the transcript from
// earlier tasks stays visible to the model; otherwise each task starts clean.
func (c *Controller) RunTask(ctx context.Context, task string) (*engine.Outcome, error) {
	if !c.cfg.Engine.KeepConversation {
		c.conv = protocol.NewConversation()
	}

	logging.Session("session %s: running task", c.id)
	started := time.Now()
	outcome, err := c.engine.Run(ctx, task, c.conv)
	c.record(task, started, outcome)
	return outcome, err
}

// Reset drops the conversation, regardless of keep_conversation.
func (c *Controller) Reset() {
	c.conv = protocol.NewConversation()
	logging.Session("session %s: conversation cleared", c.id)
}

// ConversationLen reports the current transcript length.
func (c *Controller) ConversationLen() int {
	return c.conv.Len()
}

func (c *Controller) record(task string, started time.Time, outcome *engine.Outcome) {
	if c.store == nil || outcome == nil {
		return
	}
	err := c.store.Record(history.Entry{
		SessionID:  c.id,
		Task:       task,
		Status:     string(outcome.Status),
		Steps:      outcome.Steps,
		Detail:     outcome.Detail,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	if err != nil {
		logging.SessionWarn("session %s: record history: %v", c.id, err)
	}
}
