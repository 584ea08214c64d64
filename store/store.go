package store

import "github.com/randool/chatmesh/core"

// Record is the persisted form of one conversation: the personality name
// (absent marker = empty string) and the ordered dialog turns.
type Record struct {
	Personality string      `json:"personality,omitempty"`
	Dialog      []core.Turn `json:"dialog"`
}

// RecordOf snapshots a conversation into its persisted form.
func RecordOf(c *core.Conversation) Record {
	dialog := make([]core.Turn, len(c.Turns))
	copy(dialog, c.Turns)
	return Record{Personality: c.Personality, Dialog: dialog}
}

// Conversation materializes the record back into a conversation.
func (r Record) Conversation() *core.Conversation {
	turns := make([]core.Turn, len(r.Dialog))
	copy(turns, r.Dialog)
	return &core.Conversation{Personality: r.Personality, Turns: turns}
}

// Store persists one conversation record per user identity.
//
// Absence of a record means an empty/default conversation, so Load reports
// existence separately from errors. Delete removes the durable unit entirely
// rather than writing a tombstone.
type Store interface {
	// Load returns the record for userID and whether one exists.
	Load(userID string) (Record, bool, error)
	// LoadAll returns every persisted record keyed by user identity.
	LoadAll() (map[string]Record, error)
	// Save rewrites the record for userID wholesale.
	Save(userID string, rec Record) error
	// Delete removes the record for userID; absent records are not an error.
	Delete(userID string) error
}
