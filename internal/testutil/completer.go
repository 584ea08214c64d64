package testutil

import (
	"context"
	"sync"

	"github.com/randool/chatmesh/completion"
	"github.com/randool/chatmesh/core"
)

// CompleterFunc adapts a function to completion.Completer.
type CompleterFunc func(ctx context.Context, turns []core.Turn, params completion.Params) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, turns []core.Turn, params completion.Params) (string, error) {
	return f(ctx, turns, params)
}

// Outcome is one scripted completion result.
type Outcome struct {
	Reply string
	Err   error
}

// ScriptedCompleter replays a fixed sequence of outcomes, one per call, and
// keeps returning the final outcome once the script is exhausted. It records
// the turns of every call for assertions.
type ScriptedCompleter struct {
	mu       sync.Mutex
	outcomes []Outcome
	calls    [][]core.Turn
}

// Script creates a ScriptedCompleter from the given outcomes.
func Script(outcomes ...Outcome) *ScriptedCompleter {
	return &ScriptedCompleter{outcomes: outcomes}
}

func (s *ScriptedCompleter) Complete(_ context.Context, turns []core.Turn, _ completion.Params) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]core.Turn, len(turns))
	copy(snapshot, turns)
	s.calls = append(s.calls, snapshot)

	idx := len(s.calls) - 1
	if idx >= len(s.outcomes) {
		idx = len(s.outcomes) - 1
	}
	out := s.outcomes[idx]
	return out.Reply, out.Err
}

// Calls returns how many times Complete ran.
func (s *ScriptedCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// CallTurns returns the turns passed to call i.
func (s *ScriptedCompleter) CallTurns(i int) []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}
