package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/thicket/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one record per event.
// Committed changes log at Info, ignored operations at Debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnToggle: func(ctx context.Context, e *domain.ToggleEvent) {
			logger.InfoContext(ctx, "item toggled",
				"session_id", e.SessionID,
				"tree_id", e.TreeID,
				"item_id", e.ItemID,
				"checked", e.Checked,
				"affected", e.Affected,
			)
		},
		OnExpand: func(ctx context.Context, e *domain.ExpandEvent) {
			logger.InfoContext(ctx, "item expansion changed",
				"session_id", e.SessionID,
				"item_id", e.ItemID,
				"expanded", e.Expanded,
			)
		},
		OnClear: func(ctx context.Context, e *domain.ClearEvent) {
			logger.InfoContext(ctx, "selection cleared", "session_id", e.SessionID, "removed", e.Removed)
		},
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			logger.InfoContext(ctx, "session reset", "session_id", e.SessionID, "tree_id", e.TreeID, "items", e.Items)
		},
		OnSelectionChange: func(ctx context.Context, e *domain.SelectionEvent) {
			logger.DebugContext(ctx, "selection changed", "session_id", e.SessionID, "selected", e.Selected)
		},
		OnIgnored: func(ctx context.Context, e *domain.IgnoredEvent) {
			logger.DebugContext(ctx, "operation ignored",
				"session_id", e.SessionID,
				"item_id", e.ItemID,
				"reason", e.Reason,
			)
		},
	}
}
