package domain

import "sort"

// SessionDiff represents the changes between two session snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Version *uint64 `json:"version,omitempty"`

	// States contains only added or modified entries.
	States map[string]ItemState `json:"states,omitempty"`

	// Dropped lists ids whose entries disappeared (tree reset), sorted.
	Dropped []string `json:"dropped,omitempty"`

	Selection *SelectionDelta `json:"selection,omitempty"`
}

// SelectionDelta lists ids that entered or left the selection.
type SelectionDelta struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession (initial load).
// It returns nil when nothing changed.
func Diff(oldSession, newSession *Session) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: newSession.ID}

	if oldSession == nil || oldSession.Version != newSession.Version {
		v := newSession.Version
		diff.Version = &v
	}

	diff.States, diff.Dropped = diffStates(oldSession, newSession)
	diff.Selection = diffSelection(oldSession, newSession)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffStates(old, new *Session) (map[string]ItemState, []string) {
	delta := make(map[string]ItemState)
	for id, st := range new.States {
		if old == nil {
			delta[id] = st
			continue
		}
		if prev, ok := old.States[id]; !ok || prev != st {
			delta[id] = st
		}
	}

	var dropped []string
	if old != nil {
		for id := range old.States {
			if _, ok := new.States[id]; !ok {
				dropped = append(dropped, id)
			}
		}
		sort.Strings(dropped)
	}

	if len(delta) == 0 {
		delta = nil
	}
	return delta, dropped
}

func diffSelection(old, new *Session) *SelectionDelta {
	var oldSel SelectionSet
	if old != nil {
		oldSel = old.Selection
	}

	d := &SelectionDelta{}
	for _, id := range new.Selection.IDs() {
		if !oldSel.Has(id) {
			d.Added = append(d.Added, id)
		}
	}
	for _, id := range oldSel.IDs() {
		if !new.Selection.Has(id) {
			d.Removed = append(d.Removed, id)
		}
	}

	if len(d.Added) == 0 && len(d.Removed) == 0 {
		return nil
	}
	return d
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.Version == nil &&
		len(d.States) == 0 &&
		len(d.Dropped) == 0 &&
		d.Selection == nil
}
