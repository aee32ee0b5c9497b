package domain

import "time"

// ItemState holds the derived, mutable flags of a single item.
// By construction an item is never both Checked and Indeterminate.
type ItemState struct {
	Checked       bool `json:"checked"`
	Indeterminate bool `json:"indeterminate"`

	// Expanded is UI-only and independent of the selection flags.
	Expanded bool `json:"expanded"`
}

// Session represents the snapshot of one mounted selection tree.
type Session struct {
	// ID identifies the session in a StateStore.
	ID string `json:"id"`

	// TreeID names the tree the session was started from (may be empty for
	// trees supplied directly by the caller).
	TreeID string `json:"tree_id,omitempty"`

	// States maps item id to its flags. Entries are created for every id on
	// start and lazily for ids seen later; they are only dropped by a reset.
	States map[string]ItemState `json:"states"`

	// Selection holds every checked id.
	Selection SelectionSet `json:"selection"`

	// Version increments on every committed mutation.
	Version uint64 `json:"version"`

	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted form of States and Selection when the
	// session went through an encrypting store; both are empty then.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates an empty session.
func NewSession(id, treeID string) *Session {
	return &Session{
		ID:     id,
		TreeID: treeID,
		States: make(map[string]ItemState),
	}
}

// State returns the flags for id, defaulting to all false when absent.
func (s *Session) State(id string) ItemState {
	return s.States[id]
}

// Snapshot returns a deep copy of the session, safe to mutate independently.
func (s *Session) Snapshot() *Session {
	c := *s
	c.States = make(map[string]ItemState, len(s.States))
	for k, v := range s.States {
		c.States[k] = v
	}
	c.Selection = s.Selection.Clone()
	return &c
}

// Update is the outcome of a mutation applied to a stored session.
type Update struct {
	Session *Session `json:"session"`

	// Selected is the materialized selection, in the tree's configured order.
	Selected []string `json:"selected"`

	// Diff lists what changed. Nil when the mutation was a no-op.
	Diff *SessionDiff `json:"diff,omitempty"`
}
