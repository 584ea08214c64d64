// Package completion defines the provider-neutral completion contract and a
// resilient client on top of it.
//
// A Completer turns a list of conversation turns into one assistant reply.
// Provider adapters live in the openai and anthropic subpackages and map
// provider failures into *Error values carrying a stable Kind, so callers
// never branch on provider specific error types.
//
// Client wraps any Completer with bounded attempts, a per-attempt timeout,
// and the degraded-reply policy: rate-limit and invalid-request failures are
// absorbed into a visible assistant reply instead of failing the chat turn.
package completion
