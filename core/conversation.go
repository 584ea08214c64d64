package core

import "strings"

// Conversation is the dialog state owned by exactly one user identity.
//
// Invariant: when Turns is non-empty and Personality is set, Turns[0] is a
// system turn carrying that personality's template content verbatim. All
// later turns are user or assistant turns; strict alternation is NOT
// enforced (consecutive same-role turns caused by retries are tolerated).
type Conversation struct {
	Personality string `json:"personality,omitempty"`
	Turns       []Turn `json:"turns"`
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.Turns) }

// HasSystemTurn reports whether the conversation starts with a system turn.
func (c *Conversation) HasSystemTurn() bool {
	return len(c.Turns) > 0 && c.Turns[0].Role == RoleSystem
}

// Clone returns a deep copy safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{Personality: c.Personality, Turns: make([]Turn, len(c.Turns))}
	copy(clone.Turns, c.Turns)
	return clone
}

// Transcript renders the turns as a flat role-prefixed text block, one
// "role:content" line per turn. The orchestrator seeds the detect and
// synthesize prompts with this summary instead of the raw turns, bounding
// prompt growth independently of budget enforcement.
func (c *Conversation) Transcript() string {
	var b strings.Builder
	for i, t := range c.Turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(t.Role))
		b.WriteByte(':')
		b.WriteString(t.Content)
	}
	return b.String()
}
