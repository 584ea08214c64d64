package core

import "fmt"

// Role identifies the author of a conversation turn. It is a closed
// three-variant enumeration; values outside the three constants are only
// representable at the boundary and are rejected by ParseRole.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the three closed variants.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ParseRole converts free-form input into a Role. It is the single place
// where an invalid role string can surface; everything past this boundary
// operates on the closed enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Turn is one message in a conversation. Turns are immutable once appended;
// the only way a turn leaves a conversation is trimming (budget eviction,
// reset, rollback).
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Name optionally tags the participant. When set, token estimation
	// charges the name instead of the one-token role (see tokenizer).
	Name string `json:"name,omitempty"`
}

// NewTurn creates a turn with the given role and content.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}

// SystemTurn creates a system-role turn.
func SystemTurn(content string) Turn { return NewTurn(RoleSystem, content) }

// UserTurn creates a user-role turn.
func UserTurn(content string) Turn { return NewTurn(RoleUser, content) }

// AssistantTurn creates an assistant-role turn.
func AssistantTurn(content string) Turn { return NewTurn(RoleAssistant, content) }
