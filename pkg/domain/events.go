package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventToggle    EventType = "toggle"
	EventExpand    EventType = "expand"
	EventClear     EventType = "clear"
	EventReset     EventType = "reset"
	EventSelection EventType = "selection"
	EventIgnored   EventType = "ignored"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	TreeID    string    `json:"tree_id,omitempty"`
}

// ToggleEvent is emitted after a checked-state change was committed.
type ToggleEvent struct {
	EventBase
	ItemID  string `json:"item_id"`
	Checked bool   `json:"checked"`
	// Affected counts the items whose flags changed (self, descendants, ancestors).
	Affected int `json:"affected"`
}

// ExpandEvent is emitted after an expansion flip.
type ExpandEvent struct {
	EventBase
	ItemID   string `json:"item_id"`
	Expanded bool   `json:"expanded"`
}

// ClearEvent is emitted after ClearAll removed a non-empty selection.
type ClearEvent struct {
	EventBase
	Removed int `json:"removed"`
}

// ResetEvent is emitted when a session is (re)initialized from a tree.
type ResetEvent struct {
	EventBase
	Items int `json:"items"`
}

// SelectionEvent carries the full selection after it changed.
type SelectionEvent struct {
	EventBase
	Selected []string `json:"selected"`
}

// IgnoredEvent is emitted when an operation was dropped by policy
// (disabled item, unknown id, non-expandable tree).
type IgnoredEvent struct {
	EventBase
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnToggle          func(context.Context, *ToggleEvent)
	OnExpand          func(context.Context, *ExpandEvent)
	OnClear           func(context.Context, *ClearEvent)
	OnReset           func(context.Context, *ResetEvent)
	OnSelectionChange func(context.Context, *SelectionEvent)
	OnIgnored         func(context.Context, *IgnoredEvent)
}

// ChainHooks combines several hook sets; each callback runs in argument order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		out.OnToggle = chain(out.OnToggle, h.OnToggle)
		out.OnExpand = chain(out.OnExpand, h.OnExpand)
		out.OnClear = chain(out.OnClear, h.OnClear)
		out.OnReset = chain(out.OnReset, h.OnReset)
		out.OnSelectionChange = chain(out.OnSelectionChange, h.OnSelectionChange)
		out.OnIgnored = chain(out.OnIgnored, h.OnIgnored)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
