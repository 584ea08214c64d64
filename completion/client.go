package completion

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/randool/chatmesh/core"
	"github.com/randool/chatmesh/logging"
)

const (
	// DefaultTimeout bounds a single completion attempt.
	DefaultTimeout = 20 * time.Second
	// DefaultMaxAttempts is the number of attempts before a timeout is
	// reported to the caller.
	DefaultMaxAttempts = 2
)

// Provider error messages can leak the account's organization identifier.
// Scrub it before the message becomes part of a user-visible reply.
var orgIDPattern = regexp.MustCompile(`organization org-\S+`)

func scrubMessage(msg string) string {
	return orgIDPattern.ReplaceAllString(msg, "organization")
}

// ClientOptions configure a Client.
type ClientOptions struct {
	// Params are the sampling parameters applied to every call.
	Params Params
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxAttempts caps how often a timed-out attempt is retried.
	MaxAttempts int
	// Logger receives one entry per attempt.
	Logger *logging.ChatLogger
}

// Client wraps a Completer with per-attempt timeouts, bounded retries, and
// the degraded-reply policy.
//
// Only timeouts are retried. Every other failure is converted into a tagged
// assistant reply so the conversation keeps moving; the tag makes the
// degradation visible to the user instead of silently dropping their
// message. The only error a caller ever sees is timeout exhaustion.
type Client struct {
	completer   Completer
	params      Params
	timeout     time.Duration
	maxAttempts int
	logger      *logging.ChatLogger
}

// NewClient wraps completer.
func NewClient(completer Completer, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		Params:      DefaultParams(),
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		Logger:      logging.NewLogger(nil).WithComponent("completion"),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Client{
		completer:   completer,
		params:      opts.Params,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		logger:      opts.Logger,
	}
}

// Params returns the client's sampling parameters.
func (c *Client) Params() Params { return c.params }

// Complete produces one assistant reply for turns.
//
// Every attempt runs under its own timeout. When all attempts time out the
// call fails with core.ErrTimeoutExhausted so the caller can roll the
// conversation back to its pre-call state.
func (c *Client) Complete(ctx context.Context, turns []core.Turn) (string, error) {
	return c.CompleteWithParams(ctx, turns, c.params)
}

// CompleteWithParams is Complete with per-call parameter overrides.
func (c *Client) CompleteWithParams(ctx context.Context, turns []core.Turn, params Params) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		reply, err := c.attempt(ctx, turns, params, attempt)
		if err == nil {
			return strings.TrimSpace(reply), nil
		}
		lastErr = err

		switch ClassifyKind(err) {
		case KindTimeout:
			// Retry unless the caller's own context is done.
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %s", core.ErrTimeoutExhausted, ctx.Err())
			}
			continue
		case KindRateLimited:
			return degradedReply("RateLimited", err), nil
		case KindInvalidRequest:
			return degradedReply("InvalidRequest", err), nil
		default:
			return degradedReply("Error", err), nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %s", core.ErrTimeoutExhausted, c.maxAttempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, turns []core.Turn, params Params, attempt int) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reply, err := c.completer.Complete(attemptCtx, turns, params)
	c.logger.LogCompletionCall(params.Model, attempt, time.Since(start), err)
	return reply, err
}

// degradedReply formats an absorbed failure as a tagged assistant reply.
func degradedReply(tag string, err error) string {
	msg := err.Error()
	var cerr *Error
	if errors.As(err, &cerr) {
		msg = cerr.Message
	}
	return fmt.Sprintf("[%s] %s", tag, scrubMessage(msg))
}
