package runtime

import "github.com/aretw0/thicket/pkg/domain"

// Reconcile aligns a session with the current tree. It is used for sessions
// persisted against an older revision of the tree and for sessions supplied
// by external clients.
//
// Entries for ids that left the tree are dropped and new ids get a default
// entry. Leaves keep their checked flag; every parent is recomputed bottom-up.
// The selection keeps the surviving ids in their insertion order and appends
// newly checked ids in document order.
//
// The input is not modified. The version is bumped only when something changed.
func (e *Engine) Reconcile(sess *domain.Session) *domain.Session {
	next := e.snapshot(sess)
	order := e.index.Order()

	states := make(map[string]domain.ItemState, len(order))
	for _, id := range order {
		st := next.States[id]
		if e.index.IsLeaf(id) {
			st.Indeterminate = false
		}
		states[id] = st
	}
	next.States = states

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if e.index.IsLeaf(id) {
			continue
		}
		st := next.States[id]
		st.Checked, st.Indeterminate = e.rollup(next, id)
		next.States[id] = st
	}

	selection := domain.NewSelectionSet()
	for _, id := range next.Selection.IDs() {
		if next.States[id].Checked {
			selection.Add(id)
		}
	}
	for _, id := range order {
		if next.States[id].Checked {
			selection.Add(id)
		}
	}
	next.Selection = selection

	if sess != nil && domain.Diff(sess, next) == nil {
		return next
	}
	e.commit(next)
	e.logger.Debug("session reconciled", "session_id", next.ID, "tree_id", next.TreeID)
	return next
}
