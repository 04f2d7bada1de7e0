// Package config loads tinker configuration from defaults, an optional
// .tinker/config.yaml in the project root, and environment overrides,
// in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-project configuration file, relative to root.
const ConfigFileName = ".tinker/config.yaml"

// Config holds all tinker settings.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Engine    EngineConfig    `yaml:"engine"`
	Execution ExecutionConfig `yaml:"execution"`
	Scan      ScanConfig      `yaml:"scan"`
	History   HistoryConfig   `yaml:"history"`
}

// LLMConfig configures the model invocation boundary.
type LLMConfig struct {
	// APIKey is resolved from the environment when empty; a missing key is
	// a fatal startup error.
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// EngineConfig bounds the step loop.
type EngineConfig struct {
	MaxIterations int    `yaml:"max_iterations"`
	StepDelay     string `yaml:"step_delay"`
	RetryLimit    int    `yaml:"retry_limit"`
	RetryBackoff  string `yaml:"retry_backoff"`

	// KeepConversation retains the conversation across tasks instead of
	// starting each task fresh.
	KeepConversation bool `yaml:"keep_conversation"`
}

// ExecutionConfig bounds the shell-command primitive.
type ExecutionConfig struct {
	CommandTimeout string `yaml:"command_timeout"`
	MaxOutputBytes int    `yaml:"max_output_bytes"`

	// Linters maps source-file extensions to lint commands run after a
	// write; "{file}" is replaced with the written path. A lint failure is
	// reported as the write's failure even though the file stays on disk.
	Linters map[string]string `yaml:"linters"`
}

// ScanConfig bounds the project scan primitive.
type ScanConfig struct {
	// ExcludeDirs are directory names skipped unconditionally, on top of
	// the built-in dependency/VCS/build-cache exclusions.
	ExcludeDirs []string `yaml:"exclude_dirs"`
	MaxEntries  int      `yaml:"max_entries"`
}

// HistoryConfig configures the rolling task log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "5m",
		},
		Engine: EngineConfig{
			MaxIterations: 50,
			StepDelay:     "2s",
			RetryLimit:    3,
			RetryBackoff:  "10s",
		},
		Execution: ExecutionConfig{
			CommandTimeout: "2m",
			MaxOutputBytes: 50_000,
			Linters: map[string]string{
				".go": "gofmt -l {file}",
			},
		},
		Scan: ScanConfig{
			MaxEntries: 5_000,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".tinker/history.db",
		},
	}
}

// Load builds the effective configuration for a project root.
func Load(root string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("TINKER_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("TINKER_MAX_ITERATIONS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			c.Engine.MaxIterations = n
		}
	}
}

func (c *Config) validate() error {
	if c.Engine.MaxIterations <= 0 {
		return fmt.Errorf("engine.max_iterations must be positive, got %d", c.Engine.MaxIterations)
	}
	if c.Engine.RetryLimit < 0 {
		return fmt.Errorf("engine.retry_limit must not be negative, got %d", c.Engine.RetryLimit)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"llm.timeout", c.LLM.Timeout},
		{"engine.step_delay", c.Engine.StepDelay},
		{"engine.retry_backoff", c.Engine.RetryBackoff},
		{"execution.command_timeout", c.Execution.CommandTimeout},
	} {
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}

// Duration helpers. Values are validated at load time; the defaults cover
// hand-built configs in tests.

func (c *LLMConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 5*time.Minute)
}

func (c *EngineConfig) StepDelayDuration() time.Duration {
	return parseDuration(c.StepDelay, 2*time.Second)
}

func (c *EngineConfig) RetryBackoffDuration() time.Duration {
	return parseDuration(c.RetryBackoff, 10*time.Second)
}

func (c *ExecutionConfig) CommandTimeoutDuration() time.Duration {
	return parseDuration(c.CommandTimeout, 2*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
