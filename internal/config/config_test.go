package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.Generation.Provider)
	assert.Equal(t, 0.003, cfg.Generation.InputRate)
	assert.Equal(t, 0.015, cfg.Generation.OutputRate)
	assert.Equal(t, 500, cfg.Limits.DailyGenerations)
	assert.Equal(t, 2000000, cfg.Limits.DailyTokens)
	assert.Equal(t, 50.0, cfg.Limits.DailyCostUSD)
	assert.Equal(t, 5*time.Second, cfg.Settings.FlushDelay())
	assert.Equal(t, 5*time.Minute, cfg.Settings.CacheTTL())
	assert.Equal(t, 60*time.Second, cfg.Generation.Timeout())
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
generation:
  provider: bedrock
  bedrock_model_id: anthropic.claude-3-haiku-20240307-v1:0
limits:
  daily_generations: 25
settings:
  flush_delay_seconds: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "bedrock", cfg.Generation.Provider)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.Generation.BedrockModelID)
	assert.Equal(t, 25, cfg.Limits.DailyGenerations)
	assert.Equal(t, 2*time.Second, cfg.Settings.FlushDelay())
	// Unset fields still get defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 0.003, cfg.Generation.InputRate)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/leadroom")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("DAILY_GENERATION_LIMIT", "42")
	t.Setenv("TRACKING_SIGNING_KEY", "env-key")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-host/leadroom", cfg.Database.URL)
	assert.Equal(t, "sk-test", cfg.Generation.AnthropicAPIKey)
	assert.Equal(t, 42, cfg.Limits.DailyGenerations)
	assert.Equal(t, "env-key", cfg.Tracking.SigningKey)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
