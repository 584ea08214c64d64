package dialog

import (
	"fmt"
	"sync"

	"github.com/randool/chatmesh/core"
	"github.com/randool/chatmesh/logging"
	"github.com/randool/chatmesh/personality"
	"github.com/randool/chatmesh/store"
	"github.com/randool/chatmesh/tokenizer"
)

// DefaultMaxTokens is the dialog token budget applied when none is set.
const DefaultMaxTokens = 3000

// Options configure a Manager.
type Options struct {
	// MaxTokens is the budget the estimated dialog size must stay below.
	// Values <= 0 disable trimming.
	MaxTokens int
	// RollbackProtectsSystem keeps the leading personality system turn in
	// place when a rollback would otherwise remove it. Off by default: a
	// rollback spanning the whole dialog empties it, personality included.
	RollbackProtectsSystem bool
	// Logger receives eviction and persistence diagnostics.
	Logger logging.Logger
}

// Manager owns every user conversation. All mutations go through it and are
// persisted before the call returns, so the store always reflects the last
// completed operation.
type Manager struct {
	store         store.Store
	personalities personality.Source
	estimator     tokenizer.Estimator
	maxTokens     int
	protectSystem bool
	logger        logging.Logger

	mu            sync.RWMutex
	conversations map[string]*core.Conversation

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// Open constructs a Manager and restores every persisted conversation from
// the store.
func Open(st store.Store, personalities personality.Source, estimator tokenizer.Estimator, optFns ...func(o *Options)) (*Manager, error) {
	opts := Options{
		MaxTokens: DefaultMaxTokens,
		Logger:    logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	records, err := st.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("restore conversations: %w", err)
	}
	conversations := make(map[string]*core.Conversation, len(records))
	for userID, rec := range records {
		conversations[userID] = rec.Conversation()
	}

	return &Manager{
		store:         st,
		personalities: personalities,
		estimator:     estimator,
		maxTokens:     opts.MaxTokens,
		protectSystem: opts.RollbackProtectsSystem,
		logger:        opts.Logger,
		conversations: conversations,
		locks:         make(map[string]*sync.Mutex),
	}, nil
}

// userLock returns the serialization lock for one user, creating it on first
// contact.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// conversation returns the live conversation for userID, creating an empty
// one on first contact. Callers must hold the user lock.
func (m *Manager) conversation(userID string) *core.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[userID]
	if !ok {
		c = &core.Conversation{}
		m.conversations[userID] = c
	}
	return c
}

func (m *Manager) persist(userID string, c *core.Conversation) error {
	if err := m.store.Save(userID, store.RecordOf(c)); err != nil {
		return fmt.Errorf("persist conversation for %s: %w", userID, err)
	}
	return nil
}

// Get returns an independent copy of the conversation for userID. Users
// without history get an empty conversation; Get never creates state.
func (m *Manager) Get(userID string) *core.Conversation {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	m.mu.RLock()
	c, ok := m.conversations[userID]
	m.mu.RUnlock()
	if !ok {
		return &core.Conversation{}
	}
	return c.Clone()
}

// CurrentPersonality reports the personality bound to userID, or the empty
// string when none is checked out.
func (m *Manager) CurrentPersonality(userID string) string {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.conversations[userID]; ok {
		return c.Personality
	}
	return ""
}

// Personalities lists the names available for checkout.
func (m *Manager) Personalities() []string {
	return m.personalities.Names()
}

// CheckoutPersonality discards the user's history and starts a fresh
// conversation seeded with the named personality's system prompt. Unknown
// names fail with core.ErrUnknownPersonality and leave state untouched.
func (m *Manager) CheckoutPersonality(userID, name string) error {
	prompt, err := m.personalities.Get(name)
	if err != nil {
		return err
	}

	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	c := m.conversation(userID)
	c.Personality = name
	c.Turns = []core.Turn{core.SystemTurn(prompt)}

	m.logger.Info("personality checked out", "user", userID, "personality", name)
	return m.persist(userID, c)
}

// Reset clears the user's history. A leading system turn survives the reset
// together with the personality binding; without one the dialog becomes
// empty.
func (m *Manager) Reset(userID string) error {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	c := m.conversation(userID)
	if c.HasSystemTurn() {
		c.Turns = c.Turns[:1]
	} else {
		c.Turns = nil
		c.Personality = ""
	}
	return m.persist(userID, c)
}

// Append validates and appends one turn, then evicts oldest turns until the
// estimated dialog size fits the token budget again.
func (m *Manager) Append(userID string, turn core.Turn) error {
	if !turn.Role.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidRole, turn.Role)
	}

	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	c := m.conversation(userID)
	c.Turns = append(c.Turns, turn)
	if err := m.enforceBudget(userID, c); err != nil {
		return err
	}
	return m.persist(userID, c)
}

// Rollback removes the last n turns. Rolling back at least the whole dialog
// empties it and unbinds the personality, unless system-turn protection is
// enabled, in which case the leading system turn and the binding survive.
func (m *Manager) Rollback(userID string, n int) error {
	if n <= 0 {
		return nil
	}

	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	c := m.conversation(userID)
	floor := 0
	if m.protectSystem && c.HasSystemTurn() {
		floor = 1
	}
	if len(c.Turns)-n <= floor {
		c.Turns = c.Turns[:floor]
	} else {
		c.Turns = c.Turns[:len(c.Turns)-n]
	}
	if !c.HasSystemTurn() {
		c.Personality = ""
	}
	return m.persist(userID, c)
}

// Delete removes the user's conversation from memory and from the store.
func (m *Manager) Delete(userID string) error {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	delete(m.conversations, userID)
	m.mu.Unlock()

	if err := m.store.Delete(userID); err != nil {
		return fmt.Errorf("delete conversation for %s: %w", userID, err)
	}
	return nil
}

// Close persists every conversation one final time.
func (m *Manager) Close() error {
	m.mu.RLock()
	userIDs := make([]string, 0, len(m.conversations))
	for userID := range m.conversations {
		userIDs = append(userIDs, userID)
	}
	m.mu.RUnlock()

	for _, userID := range userIDs {
		l := m.userLock(userID)
		l.Lock()
		m.mu.RLock()
		c, ok := m.conversations[userID]
		m.mu.RUnlock()
		var err error
		if ok {
			err = m.persist(userID, c)
		}
		l.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// enforceBudget evicts turns until the estimate drops below the budget.
// Callers must hold the user lock.
func (m *Manager) enforceBudget(userID string, c *core.Conversation) error {
	if m.estimator == nil || m.maxTokens <= 0 {
		return nil
	}
	for len(c.Turns) > 0 {
		size, err := m.estimator.Estimate(c.Turns)
		if err != nil {
			return fmt.Errorf("estimate dialog size: %w", err)
		}
		if size < m.maxTokens {
			return nil
		}
		m.evictOne(c)
		m.logger.Debug("evicted turn to fit token budget",
			"user", userID, "estimate", size, "remaining", len(c.Turns))
	}
	return nil
}

// evictOne drops a single turn. System turns are spared as long as any
// other role is present; once only system turns remain they are evicted
// oldest first, and the personality binding is cleared with the last one.
func (m *Manager) evictOne(c *core.Conversation) {
	idx := -1
	target := core.RoleSystem
	for idx < 0 {
		for i, t := range c.Turns {
			if t.Role != target {
				idx = i
				break
			}
		}
		if idx >= 0 {
			break
		}
		if target == core.RoleSystem {
			target = core.RoleUser
			continue
		}
		idx = 0
	}

	evicted := c.Turns[idx]
	c.Turns = append(c.Turns[:idx], c.Turns[idx+1:]...)
	if evicted.Role == core.RoleSystem && !c.HasSystemTurn() {
		c.Personality = ""
	}
}
