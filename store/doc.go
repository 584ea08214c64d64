// Package store houses the persistence backends for conversation records.
// The Record shape (personality + dialog) is the external contract; one
// record maps to one durable unit named by the user identity, and every save
// rewrites that unit wholesale so no partial conversation is ever observable
// across a restart.
//
// Backends: MemoryStore (tests, ephemeral demos), FileStore (one JSON file
// per user, atomic rename), RedisStore (one key per user). Additional
// backends can be added here without changing any calling code; only the
// wiring layer decides which implementation to instantiate.
package store
