package chatmesh_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randool/chatmesh"
	"github.com/randool/chatmesh/internal/testutil"
	"github.com/randool/chatmesh/logging"
	"github.com/randool/chatmesh/personality"
	"github.com/randool/chatmesh/plugin"
	"github.com/randool/chatmesh/store"
)

func quietLogger() *logging.ChatLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LogLevelError,
		Output: io.Discard,
	})
}

func TestNewWithOverridesChatsEndToEnd(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "Hello from the assistant."})

	mesh, err := chatmesh.New(func(o *chatmesh.Options) {
		o.Config.DefaultPersonality = "helper"
		o.Store = store.NewMemoryStore()
		o.Personalities = personality.MapSource{"helper": "You are a helpful assistant."}
		o.Completer = sc
		o.Estimator = testutil.LengthEstimator{}
		o.Logger = quietLogger()
	})
	require.NoError(t, err)
	defer mesh.Close()

	reply, err := mesh.Chat(context.Background(), "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello from the assistant.", reply)

	status := mesh.Status("alice")
	assert.Equal(t, "helper", status.Personality)
	assert.Equal(t, 3, status.Turns)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := chatmesh.New(func(o *chatmesh.Options) {
		o.Config.Store.Backend = "dynamo"
	})
	require.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper"), []byte("Be helpful."), 0o644))

	configPath := filepath.Join(dir, "config.yaml")
	configYAML := `
default_personality: helper
personality_dir: ` + dir + `
store:
  backend: memory
`
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))

	sc := testutil.Script(testutil.Outcome{Reply: "configured reply"})
	mesh, err := chatmesh.NewFromConfig(configPath, func(o *chatmesh.Options) {
		o.Completer = sc
		o.Estimator = testutil.LengthEstimator{}
		o.Logger = quietLogger()
	})
	require.NoError(t, err)
	defer mesh.Close()

	reply, err := mesh.Chat(context.Background(), "bob", "hello")
	require.NoError(t, err)
	assert.Equal(t, "configured reply", reply)
	assert.Contains(t, mesh.Personalities(), "helper")
}

func TestCheckoutResetRollbackRoundTrip(t *testing.T) {
	sc := testutil.Script(
		testutil.Outcome{Reply: "first"},
		testutil.Outcome{Reply: "second"},
	)
	mesh, err := chatmesh.New(func(o *chatmesh.Options) {
		o.Store = store.NewMemoryStore()
		o.Personalities = personality.MapSource{"helper": "Be helpful."}
		o.Completer = sc
		o.Estimator = testutil.LengthEstimator{}
		o.Logger = quietLogger()
	})
	require.NoError(t, err)
	defer mesh.Close()

	require.NoError(t, mesh.Checkout("alice", "helper"))
	_, err = mesh.Chat(context.Background(), "alice", "one")
	require.NoError(t, err)
	assert.Equal(t, 3, mesh.Status("alice").Turns)

	require.NoError(t, mesh.Rollback("alice", 2))
	assert.Equal(t, 1, mesh.Status("alice").Turns)

	require.NoError(t, mesh.Reset("alice"))
	assert.Equal(t, 1, mesh.Status("alice").Turns)
	assert.Equal(t, "helper", mesh.Status("alice").Personality)

	require.NoError(t, mesh.Delete("alice"))
	assert.Equal(t, 0, mesh.Status("alice").Turns)
}

func TestDefaultDetectPromptNamesResolveAgainstDefaultPlugins(t *testing.T) {
	reg := plugin.NewRegistry(
		plugin.NewWikipedia(),
		plugin.NewGoogle("key", "cx"),
		plugin.NewWolfram("app"),
	)
	detect := personality.DefaultPrompts().RenderDetect("user:hi", reg.Descriptions())

	// The rendered prompt must only ever offer names the registry dispatches,
	// including the hard-coded example call in the built-in template.
	for _, name := range []string{"WikiSearch", "GoogleSearch", "Wolfram"} {
		assert.Contains(t, detect, name)
		_, err := reg.Get(name)
		assert.NoError(t, err, "name %q", name)
	}
}
