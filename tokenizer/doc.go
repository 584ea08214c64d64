// Package tokenizer approximates the token cost of a conversation for a
// given model family, backed by tiktoken encodings.
//
// The estimate is part of the documented contract, not an implementation
// detail: any replacement estimator must honor
//
//	total = Σ over turns (per-turn framing overhead
//	        + encoded length of every field)
//	        + fixed reply-priming overhead
//
// so that the dialog manager's budget enforcement keeps its termination and
// monotonicity guarantees.
package tokenizer
