package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/thicket/pkg/domain"
)

// SetChecked sets the checked flag of itemID and every descendant, then
// recomputes each ancestor from its children, nearest first.
//
// Unknown ids fail with domain.ErrItemNotFound and disabled items (or items
// under a disabled ancestor) with domain.ErrItemDisabled. Descendants are
// forced to the new value even when they are disabled themselves.
func (e *Engine) SetChecked(ctx context.Context, sess *domain.Session, itemID string, checked bool) (*domain.Session, error) {
	if !e.index.Has(itemID) {
		e.emitIgnored(ctx, sess, itemID, "not_found")
		return nil, fmt.Errorf("set checked %q: %w", itemID, domain.ErrItemNotFound)
	}
	if e.index.IsDisabled(itemID) {
		e.emitIgnored(ctx, sess, itemID, "disabled")
		return nil, fmt.Errorf("set checked %q: %w", itemID, domain.ErrItemDisabled)
	}

	next := e.snapshot(sess)
	affected := 0

	targets := append([]string{itemID}, e.index.Descendants(itemID)...)
	for _, id := range targets {
		if e.setFlags(next, id, checked, false) {
			affected++
		}
	}

	for _, parentID := range e.index.Ancestors(itemID) {
		c, ind := e.rollup(next, parentID)
		if e.setFlags(next, parentID, c, ind) {
			affected++
		}
	}

	selectionChanged := !next.Selection.Equal(sess.Selection)
	if affected == 0 && !selectionChanged {
		return next, nil
	}

	e.commit(next)
	e.logger.Debug("checked state changed",
		"session_id", next.ID, "item_id", itemID, "checked", checked, "affected", affected)
	e.emitToggle(ctx, next, itemID, checked, affected)
	if selectionChanged {
		e.emitSelection(ctx, next)
	}
	return next, nil
}

// ToggleExpansion flips the expanded flag of itemID. Selection is untouched.
func (e *Engine) ToggleExpansion(ctx context.Context, sess *domain.Session, itemID string) (*domain.Session, error) {
	if !e.opts.Expandable {
		e.emitIgnored(ctx, sess, itemID, "not_expandable")
		return nil, fmt.Errorf("toggle expansion %q: %w", itemID, domain.ErrNotExpandable)
	}
	if !e.index.Has(itemID) {
		e.emitIgnored(ctx, sess, itemID, "not_found")
		return nil, fmt.Errorf("toggle expansion %q: %w", itemID, domain.ErrItemNotFound)
	}

	next := e.snapshot(sess)
	st := next.States[itemID]
	st.Expanded = !st.Expanded
	next.States[itemID] = st

	e.commit(next)
	e.emitExpand(ctx, next, itemID, st.Expanded)
	return next, nil
}

// ClearAll unchecks every item and empties the selection. Expansion is kept.
// Clearing an already empty selection returns an equal session and fires no hook.
func (e *Engine) ClearAll(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	next := e.snapshot(sess)

	changed := false
	for id, st := range next.States {
		if st.Checked || st.Indeterminate {
			st.Checked, st.Indeterminate = false, false
			next.States[id] = st
			changed = true
		}
	}
	removed := next.Selection.Len()
	if next.Selection.Clear() {
		changed = true
	}
	if !changed {
		return next, nil
	}

	e.commit(next)
	e.logger.Debug("selection cleared", "session_id", next.ID, "removed", removed)
	e.emitClear(ctx, next, removed)
	e.emitSelection(ctx, next)
	return next, nil
}

// rollup derives the flags of parentID from the current flags of its children.
// Every child counts, disabled ones included.
func (e *Engine) rollup(sess *domain.Session, parentID string) (checked, indeterminate bool) {
	children := e.index.Children(parentID)
	n := len(children)
	c := 0
	for _, id := range children {
		if sess.States[id].Checked {
			c++
		}
	}
	checked = n > 0 && c == n
	if e.opts.AllowPartialSelection {
		indeterminate = c > 0 && c < n
	}
	return checked, indeterminate
}

// setFlags writes the selection flags of id, keeping its expansion, and keeps
// the selection set in step. It reports whether the flags changed.
func (e *Engine) setFlags(sess *domain.Session, id string, checked, indeterminate bool) bool {
	prev, ok := sess.States[id]
	st := prev
	st.Checked, st.Indeterminate = checked, indeterminate
	sess.States[id] = st

	if checked {
		sess.Selection.Add(id)
	} else {
		sess.Selection.Remove(id)
	}
	return !ok || prev != st
}

func (e *Engine) snapshot(sess *domain.Session) *domain.Session {
	if sess == nil {
		sess = domain.NewSession("", e.treeID)
	}
	next := sess.Snapshot()
	if next.TreeID == "" {
		next.TreeID = e.treeID
	}
	return next
}

func (e *Engine) commit(sess *domain.Session) {
	sess.Version++
	sess.UpdatedAt = e.now()
}
