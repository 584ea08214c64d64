// Package engine ties the dialog manager and the orchestrator together into
// the chat entry point. One Chat call is one user message: the engine seeds
// the default personality on first contact, appends the user turn, routes the
// conversation through the direct or the plugin pipeline, and commits the
// assistant reply. A failed pipeline rolls the user turn back so the
// conversation is exactly what it was before the call.
package engine
