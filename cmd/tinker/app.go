package main

import (
	"context"
	"fmt"
	"path/filepath"

	"tinker/internal/config"
	"tinker/internal/engine"
	"tinker/internal/executor"
	"tinker/internal/history"
	"tinker/internal/llm"
	"tinker/internal/logging"
	"tinker/internal/session"
)

// app wires configuration, the model client, the executor, and the session
// for one CLI invocation.
type app struct {
	Root     string
	Config   *config.Config
	Session  *session.Controller
	Narrator *narrator

	store *history.Store
}

// loadConfig resolves the project root and the effective configuration with
// flag overrides applied.
func loadConfig() (string, *config.Config, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return "", nil, fmt.Errorf("resolve project directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if modelName != "" {
		cfg.LLM.Model = modelName
	}
	if cmdTimeout > 0 {
		cfg.Execution.CommandTimeout = cmdTimeout.String()
	}
	return root, cfg, nil
}

func historyPath(root string, cfg *config.Config) string {
	p := cfg.History.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}

// newApp builds everything a task run needs. A missing API key fails here,
// before any conversation starts.
func newApp(ctx context.Context) (*app, error) {
	root, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logging.Boot("project root %s, model %s", root, cfg.LLM.Model)

	gemini, err := llm.NewGemini(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	client := llm.Retry{
		Client:  gemini,
		Limit:   cfg.Engine.RetryLimit,
		Backoff: cfg.Engine.RetryBackoffDuration(),
	}

	exec, err := executor.New(root, cfg.Execution, cfg.Scan)
	if err != nil {
		return nil, err
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(historyPath(root, cfg))
		if err != nil {
			// History is a convenience; a broken store must not block work.
			logging.BootWarn("task history unavailable: %v", err)
			store = nil
		}
	}

	narrate := newNarrator()
	eng := engine.New(client, exec, cfg.Engine, narrate)

	return &app{
		Root:     root,
		Config:   cfg,
		Session:  session.New(cfg, eng, store),
		Narrator: narrate,
		store:    store,
	}, nil
}

// Close releases the history store.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.BootWarn("close history store: %v", err)
		}
	}
}
