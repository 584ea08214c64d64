// Package orchestrator runs the completion pipeline over a conversation.
//
// The plain path is one completion over the raw turns. The plugin path is a
// three-stage pass: a detection completion over the dialog transcript, a
// concurrent fan-out of every detected plugin call, and a synthesis
// completion that folds the retrieved knowledge back into a reply. Detection
// output with no parseable call array short-circuits the pass; it already is
// the reply. Individual plugin failures never fail the pass, they are logged
// and their results dropped.
package orchestrator
