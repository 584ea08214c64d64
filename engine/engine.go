package engine

import (
	"context"
	"strings"

	"github.com/randool/chatmesh/core"
	"github.com/randool/chatmesh/dialog"
	"github.com/randool/chatmesh/logging"
	"github.com/randool/chatmesh/orchestrator"
)

// Options configure an Engine.
type Options struct {
	// DefaultPersonality is checked out automatically when a user with no
	// history sends their first message. Empty disables seeding.
	DefaultPersonality string
	// PluginPersonality routes a conversation through the plugin pipeline
	// instead of the direct completion. Empty disables the plugin path.
	PluginPersonality string
	// Logger receives per-chat diagnostics.
	Logger *logging.ChatLogger
}

// Engine is the chat entry point.
type Engine struct {
	dialogs            *dialog.Manager
	orch               *orchestrator.Orchestrator
	defaultPersonality string
	pluginPersonality  string
	logger             *logging.ChatLogger
}

// Status is a snapshot of one user's conversation.
type Status struct {
	Personality string `json:"personality"`
	Turns       int    `json:"turns"`
}

// New creates an engine over a dialog manager and an orchestrator.
func New(dialogs *dialog.Manager, orch *orchestrator.Orchestrator, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Logger: logging.NewLogger(nil).WithComponent("engine"),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		dialogs:            dialogs,
		orch:               orch,
		defaultPersonality: opts.DefaultPersonality,
		pluginPersonality:  opts.PluginPersonality,
		logger:             opts.Logger,
	}
}

// Chat handles one user message and returns the assistant reply.
func (e *Engine) Chat(ctx context.Context, userID, text string) (string, error) {
	logger := e.logger.WithUser(userID)

	if e.defaultPersonality != "" && e.dialogs.Get(userID).Len() == 0 {
		if err := e.dialogs.CheckoutPersonality(userID, e.defaultPersonality); err != nil {
			return "", err
		}
		logger.Debug("seeded default personality", "personality", e.defaultPersonality)
	}

	if err := e.dialogs.Append(userID, core.UserTurn(text)); err != nil {
		return "", err
	}

	conv := e.dialogs.Get(userID)
	usePlugins := e.pluginPersonality != "" && conv.Personality == e.pluginPersonality

	var reply string
	var err error
	if usePlugins {
		reply, err = e.orch.ReplyWithPlugins(ctx, conv)
	} else {
		reply, err = e.orch.Reply(ctx, conv)
	}
	if err != nil {
		// Undo the user turn so a retry sees the pre-call conversation.
		if rbErr := e.dialogs.Rollback(userID, 1); rbErr != nil {
			logger.Error("rollback after failed reply", "error", rbErr)
		}
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if err := e.dialogs.Append(userID, core.AssistantTurn(reply)); err != nil {
		return "", err
	}

	// The plugin pipeline is stateless across messages; each pass starts
	// from a fresh dialog seeded with the personality prompt.
	if usePlugins {
		if err := e.dialogs.Reset(userID); err != nil {
			return "", err
		}
	}
	return reply, nil
}

// Checkout switches the user to the named personality, discarding history.
func (e *Engine) Checkout(userID, name string) error {
	return e.dialogs.CheckoutPersonality(userID, name)
}

// Reset clears the user's history, keeping any bound personality.
func (e *Engine) Reset(userID string) error {
	return e.dialogs.Reset(userID)
}

// Rollback removes the last n turns of the user's conversation.
func (e *Engine) Rollback(userID string, n int) error {
	return e.dialogs.Rollback(userID, n)
}

// Delete removes the user's conversation entirely.
func (e *Engine) Delete(userID string) error {
	return e.dialogs.Delete(userID)
}

// Personalities lists the personality names available for checkout.
func (e *Engine) Personalities() []string {
	return e.dialogs.Personalities()
}

// Status reports the user's current personality and turn count.
func (e *Engine) Status(userID string) Status {
	conv := e.dialogs.Get(userID)
	return Status{Personality: conv.Personality, Turns: conv.Len()}
}

// Close flushes every conversation to the store.
func (e *Engine) Close() error {
	return e.dialogs.Close()
}
