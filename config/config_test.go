package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.Equal(t, 3000, cfg.Dialog.MaxTokens)
	assert.Equal(t, 20*time.Second, cfg.Completion.Timeout.Std())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
default_personality: helper
plugin_personality: router
store:
  backend: redis
  redis:
    addr: redis.internal:6379
completion:
  model: gpt-4
  timeout: 45s
dialog:
  max_tokens: 2000
  rollback_protects_system: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "helper", cfg.DefaultPersonality)
	assert.Equal(t, "router", cfg.PluginPersonality)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Store.Redis.Addr)
	// Untouched nested defaults survive the overlay.
	assert.Equal(t, "chatmesh:dialog:", cfg.Store.Redis.Prefix)
	assert.Equal(t, "gpt-4", cfg.Completion.Model)
	assert.Equal(t, 45*time.Second, cfg.Completion.Timeout.Std())
	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.Equal(t, 2000, cfg.Dialog.MaxTokens)
	assert.True(t, cfg.Dialog.RollbackProtectsSystem)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: dynamo\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, "completion:\n  provider: cohere\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown completion provider")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "completion:\n  timeout: soon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse duration")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
