package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/randool/chatmesh/core"
)

// Params tune a single completion call.
type Params struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	N           int     `json:"n"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultParams returns the baseline sampling parameters.
func DefaultParams() Params {
	return Params{
		Model:       "gpt-3.5-turbo",
		Temperature: 1.0,
		TopP:        1.0,
		N:           1,
		MaxTokens:   1000,
	}
}

// Completer produces one assistant reply for a list of turns. Implementations
// must honor ctx cancellation and surface failures as *Error where the cause
// is classifiable.
type Completer interface {
	Complete(ctx context.Context, turns []core.Turn, params Params) (string, error)
}

// Kind classifies a completion failure independent of the provider.
type Kind int

const (
	// KindProvider covers failures with no more specific classification.
	KindProvider Kind = iota
	// KindTimeout marks deadline and cancellation failures. These are the
	// only failures the client retries.
	KindTimeout
	// KindRateLimited marks quota and throttling rejections.
	KindRateLimited
	// KindInvalidRequest marks rejections of the request itself (bad model,
	// oversized prompt, malformed parameters).
	KindInvalidRequest
)

// String returns the kind's wire-stable label.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "Timeout"
	case KindRateLimited:
		return "RateLimited"
	case KindInvalidRequest:
		return "InvalidRequest"
	default:
		return "Provider"
	}
}

// Error is a classified completion failure.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("completion %s (%s): %s", e.Kind, e.Provider, e.Message)
}

// Unwrap exposes the underlying provider error.
func (e *Error) Unwrap() error { return e.Cause }

// ClassifyKind extracts the Kind from err, treating context deadline and
// cancellation as timeouts and everything unclassified as a provider failure.
func ClassifyKind(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindProvider
}

// KindFromStatus maps an HTTP status code from a provider API to a Kind.
// Both provider adapters funnel their SDK errors through this table.
func KindFromStatus(status int) Kind {
	switch status {
	case 429:
		return KindRateLimited
	case 400, 404, 422:
		return KindInvalidRequest
	case 408, 504:
		return KindTimeout
	default:
		return KindProvider
	}
}
