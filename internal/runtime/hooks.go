package runtime

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

func (e *Engine) base(sess *domain.Session, t domain.EventType) domain.EventBase {
	b := domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		TreeID:    e.treeID,
	}
	if sess != nil {
		b.SessionID = sess.ID
		if sess.TreeID != "" {
			b.TreeID = sess.TreeID
		}
	}
	return b
}

func (e *Engine) emitToggle(ctx context.Context, sess *domain.Session, itemID string, checked bool, affected int) {
	if e.hooks.OnToggle == nil {
		return
	}
	e.hooks.OnToggle(ctx, &domain.ToggleEvent{
		EventBase: e.base(sess, domain.EventToggle),
		ItemID:    itemID,
		Checked:   checked,
		Affected:  affected,
	})
}

func (e *Engine) emitExpand(ctx context.Context, sess *domain.Session, itemID string, expanded bool) {
	if e.hooks.OnExpand == nil {
		return
	}
	e.hooks.OnExpand(ctx, &domain.ExpandEvent{
		EventBase: e.base(sess, domain.EventExpand),
		ItemID:    itemID,
		Expanded:  expanded,
	})
}

func (e *Engine) emitClear(ctx context.Context, sess *domain.Session, removed int) {
	if e.hooks.OnClear == nil {
		return
	}
	e.hooks.OnClear(ctx, &domain.ClearEvent{
		EventBase: e.base(sess, domain.EventClear),
		Removed:   removed,
	})
}

func (e *Engine) emitReset(ctx context.Context, sess *domain.Session) {
	if e.hooks.OnReset == nil {
		return
	}
	e.hooks.OnReset(ctx, &domain.ResetEvent{
		EventBase: e.base(sess, domain.EventReset),
		Items:     e.index.Len(),
	})
}

func (e *Engine) emitSelection(ctx context.Context, sess *domain.Session) {
	if e.hooks.OnSelectionChange == nil {
		return
	}
	e.hooks.OnSelectionChange(ctx, &domain.SelectionEvent{
		EventBase: e.base(sess, domain.EventSelection),
		Selected:  e.Selected(sess),
	})
}

func (e *Engine) emitIgnored(ctx context.Context, sess *domain.Session, itemID, reason string) {
	e.logger.Debug("event ignored", "item_id", itemID, "reason", reason)
	if e.hooks.OnIgnored == nil {
		return
	}
	e.hooks.OnIgnored(ctx, &domain.IgnoredEvent{
		EventBase: e.base(sess, domain.EventIgnored),
		ItemID:    itemID,
		Reason:    reason,
	})
}

// NotifySelection fires OnSelectionChange for sess. It serves callers that
// replace a session wholesale (reset, restore) rather than through an operation.
func (e *Engine) NotifySelection(ctx context.Context, sess *domain.Session) {
	e.emitSelection(ctx, sess)
}
