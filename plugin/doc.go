// Package plugin defines the knowledge-plugin contract and a registry for
// dispatching detected tool calls by name.
//
// A plugin answers a single query with a small list of text results; the
// orchestrator merges those results into the synthesis prompt. Built-in
// plugins cover Wikipedia search, Google programmable search, and the
// WolframAlpha short answers API. All of them take an injectable HTTP client
// and honor context cancellation, so one slow upstream never outlives the
// orchestration pass that launched it.
package plugin
