package engine_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randool/chatmesh/completion"
	"github.com/randool/chatmesh/core"
	"github.com/randool/chatmesh/dialog"
	"github.com/randool/chatmesh/engine"
	"github.com/randool/chatmesh/internal/testutil"
	"github.com/randool/chatmesh/logging"
	"github.com/randool/chatmesh/orchestrator"
	"github.com/randool/chatmesh/personality"
	"github.com/randool/chatmesh/plugin"
	"github.com/randool/chatmesh/store"
)

const (
	helperPrompt = "You are a helpful assistant."
	routerPrompt = "You decide which tools to call."
)

func quietLogger() *logging.ChatLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LogLevelError,
		Output: io.Discard,
	})
}

type fixture struct {
	engine  *engine.Engine
	dialogs *dialog.Manager
	store   *store.MemoryStore
}

func newFixture(t *testing.T, sc *testutil.ScriptedCompleter, plugins ...plugin.Plugin) *fixture {
	t.Helper()

	st := store.NewMemoryStore()
	source := personality.MapSource{
		"helper": helperPrompt,
		"router": routerPrompt,
	}
	dialogs, err := dialog.Open(st, source, testutil.LengthEstimator{}, func(o *dialog.Options) {
		o.MaxTokens = 0
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)

	client := completion.NewClient(sc, func(o *completion.ClientOptions) {
		o.Logger = quietLogger()
	})
	orch := orchestrator.New(client, plugin.NewRegistry(plugins...), func(o *orchestrator.Options) {
		o.Logger = quietLogger()
	})
	eng := engine.New(dialogs, orch, func(o *engine.Options) {
		o.DefaultPersonality = "helper"
		o.PluginPersonality = "router"
		o.Logger = quietLogger()
	})
	return &fixture{engine: eng, dialogs: dialogs, store: st}
}

func TestChatSeedsDefaultPersonalityOnFirstContact(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "Hello!"})
	f := newFixture(t, sc)

	reply, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)

	conv := f.dialogs.Get("alice")
	require.Equal(t, 3, conv.Len())
	assert.Equal(t, core.RoleSystem, conv.Turns[0].Role)
	assert.Equal(t, helperPrompt, conv.Turns[0].Content)
	assert.Equal(t, core.UserTurn("hi"), conv.Turns[1])
	assert.Equal(t, core.AssistantTurn("Hello!"), conv.Turns[2])
	assert.Equal(t, "helper", conv.Personality)
}

func TestChatDoesNotReseedExistingConversation(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "reply"})
	f := newFixture(t, sc)

	require.NoError(t, f.engine.Checkout("alice", "helper"))
	require.NoError(t, f.dialogs.Append("alice", core.UserTurn("earlier")))

	_, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.NoError(t, err)

	conv := f.dialogs.Get("alice")
	// system + earlier + hi + reply, not a fresh checkout.
	assert.Equal(t, 4, conv.Len())
}

func TestChatTrimsReplyWhitespace(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "\n\n  padded reply  \n"})
	f := newFixture(t, sc)

	reply, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "padded reply", reply)

	conv := f.dialogs.Get("alice")
	assert.Equal(t, "padded reply", conv.Turns[conv.Len()-1].Content)
}

func TestChatRollsBackUserTurnOnFailure(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Err: &completion.Error{
		Kind:     completion.KindTimeout,
		Provider: "test",
		Message:  "deadline exceeded",
	}})
	f := newFixture(t, sc)

	require.NoError(t, f.engine.Checkout("alice", "helper"))
	before := f.dialogs.Get("alice")

	_, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.Error(t, err)

	after := f.dialogs.Get("alice")
	assert.Equal(t, before.Turns, after.Turns)
	assert.Equal(t, "helper", after.Personality)
}

func TestChatSurfacesDegradedReply(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Err: &completion.Error{
		Kind:     completion.KindRateLimited,
		Provider: "test",
		Message:  "quota exceeded",
	}})
	f := newFixture(t, sc)

	reply, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "[RateLimited] quota exceeded", reply)

	// The degraded reply is recorded like any other assistant turn.
	conv := f.dialogs.Get("alice")
	assert.Equal(t, core.AssistantTurn("[RateLimited] quota exceeded"), conv.Turns[conv.Len()-1])
}

func TestChatTimeoutExhaustionRollsBack(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Err: &completion.Error{
		Kind:     completion.KindTimeout,
		Provider: "test",
		Message:  "deadline exceeded",
	}})
	f := newFixture(t, sc)

	_, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.ErrorIs(t, err, core.ErrTimeoutExhausted)

	// The seeded system turn survives; the user turn does not.
	conv := f.dialogs.Get("alice")
	require.Equal(t, 1, conv.Len())
	assert.Equal(t, core.RoleSystem, conv.Turns[0].Role)
}

func TestChatRoutesPluginPersonalityThroughPipeline(t *testing.T) {
	wiki := &testutil.FakePlugin{PluginName: "wiki", Results: []string{"a retrieved fact"}}
	sc := testutil.Script(
		testutil.Outcome{Reply: `[{"API": "wiki", "query": "some lookup"}]`},
		testutil.Outcome{Reply: "synthesized answer"},
	)
	f := newFixture(t, sc, wiki)

	require.NoError(t, f.engine.Checkout("alice", "router"))

	reply, err := f.engine.Chat(context.Background(), "alice", "needs a lookup")
	require.NoError(t, err)
	assert.Equal(t, "synthesized answer", reply)
	assert.Equal(t, []string{"some lookup"}, wiki.Queries())
}

func TestChatResetsDialogAfterPluginReply(t *testing.T) {
	sc := testutil.Script(
		testutil.Outcome{Reply: "no lookup needed, direct answer"},
	)
	f := newFixture(t, sc)

	require.NoError(t, f.engine.Checkout("alice", "router"))

	_, err := f.engine.Chat(context.Background(), "alice", "hello")
	require.NoError(t, err)

	// Only the reseeded system prompt remains after a plugin-path reply.
	conv := f.dialogs.Get("alice")
	require.Equal(t, 1, conv.Len())
	assert.Equal(t, routerPrompt, conv.Turns[0].Content)
	assert.Equal(t, "router", conv.Personality)
}

func TestChatDirectPersonalityKeepsHistory(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "first"}, testutil.Outcome{Reply: "second"})
	f := newFixture(t, sc)

	_, err := f.engine.Chat(context.Background(), "alice", "one")
	require.NoError(t, err)
	_, err = f.engine.Chat(context.Background(), "alice", "two")
	require.NoError(t, err)

	conv := f.dialogs.Get("alice")
	assert.Equal(t, 5, conv.Len())
}

func TestStatusReportsPersonalityAndTurns(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "hello"})
	f := newFixture(t, sc)

	_, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.NoError(t, err)

	status := f.engine.Status("alice")
	assert.Equal(t, "helper", status.Personality)
	assert.Equal(t, 3, status.Turns)
}

func TestDeleteForgetsUser(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "hello"})
	f := newFixture(t, sc)

	_, err := f.engine.Chat(context.Background(), "alice", "hi")
	require.NoError(t, err)
	require.NoError(t, f.engine.Delete("alice"))

	assert.Equal(t, 0, f.engine.Status("alice").Turns)
	_, ok, err := f.store.Load("alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersonalitiesListsAvailableNames(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "hello"})
	f := newFixture(t, sc)
	assert.Equal(t, []string{"helper", "router"}, f.engine.Personalities())
}
