package orchestrator

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/randool/chatmesh/completion"
	"github.com/randool/chatmesh/core"
	"github.com/randool/chatmesh/logging"
	"github.com/randool/chatmesh/personality"
	"github.com/randool/chatmesh/plugin"
)

// Options configure an Orchestrator.
type Options struct {
	// Prompts are the detect and synthesize templates.
	Prompts personality.Prompts
	// MaxConcurrency caps parallel plugin calls per pass.
	MaxConcurrency int
	// Logger receives per-pass diagnostics.
	Logger *logging.ChatLogger
}

// Orchestrator produces assistant replies, either directly or through the
// plugin pipeline.
type Orchestrator struct {
	client         *completion.Client
	plugins        *plugin.Registry
	prompts        personality.Prompts
	maxConcurrency int
	logger         *logging.ChatLogger
}

// New creates an orchestrator over a completion client and a plugin registry.
func New(client *completion.Client, plugins *plugin.Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Prompts:        personality.DefaultPrompts(),
		MaxConcurrency: runtime.NumCPU(),
		Logger:         logging.NewLogger(nil).WithComponent("orchestrator"),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Orchestrator{
		client:         client,
		plugins:        plugins,
		prompts:        opts.Prompts,
		maxConcurrency: opts.MaxConcurrency,
		logger:         opts.Logger,
	}
}

// Reply runs one completion over the conversation's raw turns.
func (o *Orchestrator) Reply(ctx context.Context, conv *core.Conversation) (string, error) {
	return o.client.Complete(ctx, conv.Turns)
}

// ReplyWithPlugins runs the three-stage pipeline: detect, fan out, synthesize.
//
// When detection yields no parseable call array its output already is the
// reply. An empty call array still goes through synthesis so the final reply
// honors the synthesize template.
func (o *Orchestrator) ReplyWithPlugins(ctx context.Context, conv *core.Conversation) (string, error) {
	passID := uuid.NewString()
	logger := o.logger.WithPass(passID)

	transcript := conv.Transcript()
	detect := o.prompts.RenderDetect(transcript, o.plugins.Descriptions())
	detection, err := o.client.Complete(ctx, []core.Turn{core.UserTurn(detect)})
	if err != nil {
		return "", err
	}

	calls, ok := ExtractPluginCalls(detection)
	if !ok {
		logger.Debug("no plugin calls detected, detection output is the reply")
		return detection, nil
	}
	logger.Debug("plugin calls detected", "count", len(calls))

	knowledge := o.fanOut(ctx, logger, calls)
	synthesis := o.prompts.RenderSynthesize(transcript, strings.Join(knowledge, "\n"))
	return o.client.Complete(ctx, []core.Turn{core.UserTurn(synthesis)})
}

// fanOut executes the detected calls concurrently and merges their results.
// Result order follows completion order, not call order; callers must not
// depend on it. Failed calls contribute nothing.
func (o *Orchestrator) fanOut(ctx context.Context, logger *logging.ChatLogger, calls []PluginCall) []string {
	var (
		mu      sync.Mutex
		results []string
	)

	g := new(errgroup.Group)
	g.SetLimit(o.maxConcurrency)
	for _, call := range calls {
		if call.Incomplete() {
			logger.Warn("dropping incomplete plugin call",
				"api", call.API, "error", core.ErrIncompletePluginSpec)
			continue
		}
		g.Go(func() error {
			start := time.Now()
			res, err := o.plugins.Call(ctx, call.API, call.Query)
			logger.LogPluginCall(call.API, len(res), time.Since(start), err)
			if err != nil {
				return nil
			}
			mu.Lock()
			results = append(results, res...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors, failures are dropped

	return results
}
