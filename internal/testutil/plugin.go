package testutil

import (
	"context"
	"sync"
	"time"
)

// FakePlugin is a canned-response plugin for orchestrator tests. It records
// the queries it receives and can simulate latency and failures.
type FakePlugin struct {
	PluginName string
	Results    []string
	Err        error
	Delay      time.Duration
	Desc       string

	mu      sync.Mutex
	queries []string
}

// Name implements plugin.Plugin.
func (p *FakePlugin) Name() string { return p.PluginName }

// Description implements plugin.Plugin.
func (p *FakePlugin) Description() string { return p.Desc }

// Search implements plugin.Plugin.
func (p *FakePlugin) Search(ctx context.Context, query string) ([]string, error) {
	p.mu.Lock()
	p.queries = append(p.queries, query)
	p.mu.Unlock()

	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Results, nil
}

// Queries returns the queries Search received, in call order.
func (p *FakePlugin) Queries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.queries))
	copy(out, p.queries)
	return out
}
