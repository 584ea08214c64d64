// Package dialog implements the per-user conversation manager: the single
// authority over conversation state. It owns personality checkout, turn
// appends with token-budget enforcement, rollback, reset and deletion, and
// persists every mutation through a store.Store before returning.
//
// Concurrency model: operations on different users proceed in parallel;
// operations on the same user serialize on a per-user lock, so a sequence of
// mutations from one caller is never interleaved with another caller's view
// of that user.
package dialog
