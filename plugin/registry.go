package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/randool/chatmesh/core"
)

// Registry holds the available plugins keyed by lowercased name. Dispatch by
// name is how a detected tool call reaches its implementation.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates a registry pre-populated with the given plugins.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{plugins: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a plugin under its name.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[strings.ToLower(p.Name())] = p
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPlugin, name)
	}
	return p, nil
}

// Call dispatches one query to the named plugin. Requests with an empty name
// or query never reach a plugin.
func (r *Registry) Call(ctx context.Context, name, query string) ([]string, error) {
	if name == "" || query == "" {
		return nil, core.ErrIncompletePluginSpec
	}
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return p.Search(ctx, query)
}

// Names lists the registered plugins by their declared names, sorted. The
// lowercased map keys stay internal to dispatch.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// Descriptions renders a "name: description" line per plugin, sorted by
// name. The detection prompt embeds this block, so the model is only ever
// offered names the registry can actually dispatch.
func (r *Registry) Descriptions() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plugins := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		plugins = append(plugins, p)
	}
	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name() < plugins[j].Name() })
	var b strings.Builder
	for i, p := range plugins {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Name())
		b.WriteString(": ")
		b.WriteString(p.Description())
	}
	return b.String()
}
