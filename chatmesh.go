// Package chatmesh provides a high-level façade over the dialog manager, the
// completion pipeline and the plugin registry. Most applications interact
// with this package by:
//  1. Creating a ChatMesh via New() or NewFromConfig()
//  2. Optionally registering extra plugins
//  3. Calling Chat() once per incoming user message
//
// The façade delegates the chat flow to engine.Engine while keeping setup
// ergonomics concise. Defaults are safe for local development: an in-memory
// store, the built-in prompt templates and the OpenAI provider.
package chatmesh

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/randool/chatmesh/completion"
	"github.com/randool/chatmesh/completion/anthropic"
	"github.com/randool/chatmesh/completion/openai"
	"github.com/randool/chatmesh/config"
	"github.com/randool/chatmesh/core"
	"github.com/randool/chatmesh/dialog"
	"github.com/randool/chatmesh/engine"
	"github.com/randool/chatmesh/logging"
	"github.com/randool/chatmesh/orchestrator"
	"github.com/randool/chatmesh/personality"
	"github.com/randool/chatmesh/plugin"
	"github.com/randool/chatmesh/store"
	"github.com/randool/chatmesh/tokenizer"
)

// Options configure a ChatMesh instance.
type Options struct {
	// Config drives everything not overridden by the fields below.
	Config config.Config

	// Store overrides the backend selected by Config.Store.
	Store store.Store
	// Personalities overrides the directory source built from
	// Config.PersonalityDir.
	Personalities personality.Source
	// Completer overrides the provider selected by Config.Completion.
	Completer completion.Completer
	// Estimator overrides the tiktoken estimator built from
	// Config.Completion.Model.
	Estimator tokenizer.Estimator
	// Plugins are registered in addition to the ones built from
	// Config.Plugins credentials.
	Plugins []plugin.Plugin
	// Logger (defaults to a logger built from Config.Logging).
	Logger *logging.ChatLogger
}

// ChatMesh is the high-level façade aggregating the engine and its services.
type ChatMesh struct {
	engine *engine.Engine
}

// New creates a ChatMesh with optional overrides. Any unset service is built
// from the configuration.
func New(optFns ...func(o *Options)) (*ChatMesh, error) {
	opts := Options{Config: config.Default()}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(&logging.LoggerConfig{
			Level:  parseLevel(cfg.Logging.Level),
			Format: cfg.Logging.Format,
			Output: logging.DefaultLoggerConfig().Output,
		})
	}

	st := opts.Store
	if st == nil {
		var err error
		st, err = buildStore(cfg.Store)
		if err != nil {
			return nil, err
		}
	}

	personalities := opts.Personalities
	if personalities == nil {
		if cfg.PersonalityDir != "" {
			personalities = personality.NewDirSource(cfg.PersonalityDir)
		} else {
			personalities = personality.MapSource{}
		}
	}

	estimator := opts.Estimator
	if estimator == nil {
		est, err := tokenizer.New(cfg.Completion.Model)
		if err != nil {
			if !errors.Is(err, core.ErrUnsupportedModel) {
				return nil, err
			}
			est = tokenizer.NewApproximate(cfg.Completion.Model)
		}
		estimator = est
	}

	dialogs, err := dialog.Open(st, personalities, estimator, func(o *dialog.Options) {
		o.MaxTokens = cfg.Dialog.MaxTokens
		o.RollbackProtectsSystem = cfg.Dialog.RollbackProtectsSystem
		o.Logger = logger.WithComponent("dialog")
	})
	if err != nil {
		return nil, err
	}

	completer := opts.Completer
	if completer == nil {
		completer = buildCompleter(cfg.Completion)
	}
	client := completion.NewClient(completer, func(o *completion.ClientOptions) {
		o.Params = completion.Params{
			Model:       cfg.Completion.Model,
			Temperature: cfg.Completion.Temperature,
			TopP:        cfg.Completion.TopP,
			N:           cfg.Completion.N,
			MaxTokens:   cfg.Completion.MaxTokens,
		}
		o.Timeout = cfg.Completion.Timeout.Std()
		o.MaxAttempts = cfg.Completion.MaxAttempts
		o.Logger = logger.WithComponent("completion")
	})

	prompts, err := personality.LoadPrompts(cfg.Prompts.Detect, cfg.Prompts.Synthesize)
	if err != nil {
		return nil, err
	}

	registry := plugin.NewRegistry(buildPlugins(cfg.Plugins)...)
	for _, p := range opts.Plugins {
		registry.Register(p)
	}

	orch := orchestrator.New(client, registry, func(o *orchestrator.Options) {
		o.Prompts = prompts
		o.Logger = logger.WithComponent("orchestrator")
	})

	eng := engine.New(dialogs, orch, func(o *engine.Options) {
		o.DefaultPersonality = cfg.DefaultPersonality
		o.PluginPersonality = cfg.PluginPersonality
		o.Logger = logger.WithComponent("engine")
	})

	return &ChatMesh{engine: eng}, nil
}

// NewFromConfig loads a YAML configuration file and creates a ChatMesh from
// it, applying any further overrides afterwards.
func NewFromConfig(path string, optFns ...func(o *Options)) (*ChatMesh, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	optFns = append([]func(o *Options){func(o *Options) { o.Config = cfg }}, optFns...)
	return New(optFns...)
}

// Chat handles one user message and returns the assistant reply.
func (m *ChatMesh) Chat(ctx context.Context, userID, text string) (string, error) {
	return m.engine.Chat(ctx, userID, text)
}

// Checkout switches the user to the named personality, discarding history.
func (m *ChatMesh) Checkout(userID, name string) error {
	return m.engine.Checkout(userID, name)
}

// Reset clears the user's history, keeping any bound personality.
func (m *ChatMesh) Reset(userID string) error { return m.engine.Reset(userID) }

// Rollback removes the last n turns of the user's conversation.
func (m *ChatMesh) Rollback(userID string, n int) error {
	return m.engine.Rollback(userID, n)
}

// Delete removes the user's conversation entirely.
func (m *ChatMesh) Delete(userID string) error { return m.engine.Delete(userID) }

// Personalities lists the personality names available for checkout.
func (m *ChatMesh) Personalities() []string { return m.engine.Personalities() }

// Status reports the user's current personality and turn count.
func (m *ChatMesh) Status(userID string) engine.Status { return m.engine.Status(userID) }

// Close flushes every conversation to the store.
func (m *ChatMesh) Close() error { return m.engine.Close() }

func buildStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "file":
		return store.NewFileStore(cfg.Dir)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedisStore(client, func(o *store.RedisOptions) {
			if cfg.Redis.Prefix != "" {
				o.Prefix = cfg.Redis.Prefix
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func buildCompleter(cfg config.CompletionConfig) completion.Completer {
	if cfg.Provider == "anthropic" {
		return anthropic.New()
	}
	return openai.New()
}

func buildPlugins(cfg config.PluginsConfig) []plugin.Plugin {
	numResults := cfg.NumResults
	plugins := []plugin.Plugin{
		plugin.NewWikipedia(func(o *plugin.WikipediaOptions) {
			if numResults > 0 {
				o.NumResults = numResults
			}
		}),
	}
	if cfg.Google.APIKey != "" && cfg.Google.EngineID != "" {
		plugins = append(plugins, plugin.NewGoogle(cfg.Google.APIKey, cfg.Google.EngineID, func(o *plugin.GoogleOptions) {
			if numResults > 0 {
				o.NumResults = numResults
			}
		}))
	}
	if cfg.Wolfram.AppID != "" {
		plugins = append(plugins, plugin.NewWolfram(cfg.Wolfram.AppID))
	}
	return plugins
}

func parseLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
