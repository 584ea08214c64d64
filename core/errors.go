package core

import "errors"

// Sentinel errors of the public API surface. Callers match them with
// errors.Is; packages wrap them with context via fmt.Errorf("%w: ...").
var (
	// ErrInvalidRole rejects a turn whose role is not system, user or
	// assistant. The offending operation is a no-op.
	ErrInvalidRole = errors.New("invalid role")

	// ErrUnknownPersonality is returned when a personality name is absent
	// from the template source.
	ErrUnknownPersonality = errors.New("unknown personality")

	// ErrUnknownPlugin is returned by the registry for a name outside the
	// fixed plugin set.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrIncompletePluginSpec rejects a detected plugin call missing its
	// name or query. Per entry only; the rest of the batch proceeds.
	ErrIncompletePluginSpec = errors.New("incomplete plugin spec")

	// ErrUnsupportedModel is returned by the token estimator for a model
	// identifier it has no encoding for; it never silently guesses.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrTimeoutExhausted signals that the completion attempt budget was
	// spent entirely on timeouts with no substantive response. The caller
	// is expected to roll the conversation back by one turn so the failed
	// user turn does not permanently consume budget.
	ErrTimeoutExhausted = errors.New("completion attempts exhausted on timeouts")
)
