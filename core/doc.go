// Package core defines the domain contracts shared across ChatMesh: the
// closed Role enumeration, conversation turns, the per-user Conversation
// container and the sentinel errors of the public API surface.
//
// The package has zero dependencies on other chatmesh packages so that every
// layer (stores, dialog manager, completion clients, orchestrator) can share
// these types without import cycles.
package core
