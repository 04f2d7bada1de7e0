package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Engine.MaxIterations)
	assert.Equal(t, 3, cfg.Engine.RetryLimit)
	assert.Equal(t, 10*time.Second, cfg.Engine.RetryBackoffDuration())
	assert.Equal(t, 2*time.Minute, cfg.Execution.CommandTimeoutDuration())
	assert.Equal(t, 50_000, cfg.Execution.MaxOutputBytes)
	assert.True(t, cfg.History.Enabled)
}

func TestLoadFileOverrides(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".tinker"), 0o755))

	yaml := `
llm:
  model: gemini-2.5-pro
engine:
  max_iterations: 10
  step_delay: 500ms
execution:
  command_timeout: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(yaml), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 10, cfg.Engine.MaxIterations)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.StepDelayDuration())
	assert.Equal(t, 30*time.Second, cfg.Execution.CommandTimeoutDuration())
	// Untouched sections keep defaults.
	assert.Equal(t, 3, cfg.Engine.RetryLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("TINKER_MODEL", "gemini-2.5-pro")
	t.Setenv("TINKER_MAX_ITERATIONS", "7")

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 7, cfg.Engine.MaxIterations)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".tinker"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, ConfigFileName),
		[]byte("engine:\n  retry_backoff: soon\n"), 0o644))

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry_backoff")
}

func TestLoadRejectsNonPositiveCap(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".tinker"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, ConfigFileName),
		[]byte("engine:\n  max_iterations: 0\n"), 0o644))

	_, err := Load(root)
	require.Error(t, err)
}

func TestDurationFallbacks(t *testing.T) {
	var e EngineConfig
	assert.Equal(t, 2*time.Second, e.StepDelayDuration())
	assert.Equal(t, 10*time.Second, e.RetryBackoffDuration())
}
