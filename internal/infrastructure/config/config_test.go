package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "artifact", cfg.Model.Mode)
	assert.Equal(t, "models/fraud_model.json", cfg.Model.ArtifactPath)
	assert.Equal(t, 5*time.Second, cfg.Model.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
environment: production
server:
  port: 9000
model:
  mode: remote
  server_url: http://model-server:8500
rules:
  amount_multiplier: 3.5
  risky_channels:
    - web
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "remote", cfg.Model.Mode)
	assert.Equal(t, "http://model-server:8500", cfg.Model.ServerURL)
	assert.Equal(t, 3.5, cfg.Rules.AmountMultiplier)
	assert.Equal(t, []string{"web"}, cfg.Rules.RiskyChannels)

	// Untouched keys keep their defaults.
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PTB_ENVIRONMENT", "staging")
	t.Setenv("PTB_SERVER_PORT", "7070")
	t.Setenv("PTB_REDIS_ADDRESS", "redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	assert.Error(t, err)
}
