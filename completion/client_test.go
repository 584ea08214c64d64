package completion_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randool/chatmesh/completion"
	"github.com/randool/chatmesh/core"
	"github.com/randool/chatmesh/internal/testutil"
	"github.com/randool/chatmesh/logging"
)

func quietLogger() *logging.ChatLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LogLevelError,
		Output: io.Discard,
	})
}

func newClient(c completion.Completer, optFns ...func(o *completion.ClientOptions)) *completion.Client {
	optFns = append([]func(o *completion.ClientOptions){func(o *completion.ClientOptions) {
		o.Logger = quietLogger()
	}}, optFns...)
	return completion.NewClient(c, optFns...)
}

func kindError(kind completion.Kind, msg string) *completion.Error {
	return &completion.Error{Kind: kind, Provider: "test", Message: msg}
}

func TestCompleteReturnsTrimmedReply(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Reply: "  hello there \n"})
	client := newClient(sc)

	reply, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
	assert.Equal(t, 1, sc.Calls())
}

func TestCompleteRetriesAfterTimeout(t *testing.T) {
	sc := testutil.Script(
		testutil.Outcome{Err: kindError(completion.KindTimeout, "deadline exceeded")},
		testutil.Outcome{Reply: "recovered"},
	)
	client := newClient(sc)

	reply, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, sc.Calls())
}

func TestCompleteFailsAfterExhaustedTimeouts(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Err: kindError(completion.KindTimeout, "deadline exceeded")})
	client := newClient(sc, func(o *completion.ClientOptions) { o.MaxAttempts = 3 })

	_, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.ErrorIs(t, err, core.ErrTimeoutExhausted)
	assert.Equal(t, 3, sc.Calls())
}

func TestCompleteAbsorbsRateLimitIntoReply(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Err: kindError(completion.KindRateLimited, "quota exceeded, retry later")})
	client := newClient(sc)

	reply, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.NoError(t, err)
	assert.Equal(t, "[RateLimited] quota exceeded, retry later", reply)
	assert.Equal(t, 1, sc.Calls())
}

func TestCompleteAbsorbsInvalidRequestIntoReply(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Err: kindError(completion.KindInvalidRequest, "maximum context length exceeded")})
	client := newClient(sc)

	reply, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.NoError(t, err)
	assert.Equal(t, "[InvalidRequest] maximum context length exceeded", reply)
}

func TestCompleteScrubsOrganizationID(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{
		Err: kindError(completion.KindRateLimited, "Rate limit reached for organization org-a1B2c3D4e5 on requests"),
	})
	client := newClient(sc)

	reply, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.NoError(t, err)
	assert.Equal(t, "[RateLimited] Rate limit reached for organization on requests", reply)
	assert.NotContains(t, reply, "org-")
}

func TestCompleteAbsorbsProviderErrorsIntoReply(t *testing.T) {
	sc := testutil.Script(testutil.Outcome{Err: kindError(completion.KindProvider, "boom")})
	client := newClient(sc)

	reply, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.NoError(t, err)
	assert.Equal(t, "[Error] boom", reply)
	assert.Equal(t, 1, sc.Calls())
}

func TestCompleteTreatsRawDeadlineAsTimeout(t *testing.T) {
	sc := testutil.Script(
		testutil.Outcome{Err: context.DeadlineExceeded},
		testutil.Outcome{Reply: "recovered"},
	)
	client := newClient(sc)

	reply, err := client.Complete(context.Background(), []core.Turn{core.UserTurn("hi")})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, sc.Calls())
}

func TestCompleteStopsRetryingWhenCallerContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sc := testutil.Script(testutil.Outcome{Err: kindError(completion.KindTimeout, "slow")})
	client := newClient(sc, func(o *completion.ClientOptions) { o.MaxAttempts = 10 })

	cancel()
	_, err := client.Complete(ctx, []core.Turn{core.UserTurn("hi")})
	require.ErrorIs(t, err, core.ErrTimeoutExhausted)
	assert.Equal(t, 1, sc.Calls())
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want completion.Kind
	}{
		{"classified error", kindError(completion.KindRateLimited, "x"), completion.KindRateLimited},
		{"deadline", context.DeadlineExceeded, completion.KindTimeout},
		{"canceled", context.Canceled, completion.KindTimeout},
		{"plain error", io.ErrUnexpectedEOF, completion.KindProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completion.ClassifyKind(tt.err))
		})
	}
}

func TestKindFromStatus(t *testing.T) {
	assert.Equal(t, completion.KindRateLimited, completion.KindFromStatus(429))
	assert.Equal(t, completion.KindInvalidRequest, completion.KindFromStatus(400))
	assert.Equal(t, completion.KindInvalidRequest, completion.KindFromStatus(422))
	assert.Equal(t, completion.KindTimeout, completion.KindFromStatus(408))
	assert.Equal(t, completion.KindTimeout, completion.KindFromStatus(504))
	assert.Equal(t, completion.KindProvider, completion.KindFromStatus(500))
}
