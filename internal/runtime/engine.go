package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/tree"
)

// Engine applies selection events to sessions of a single tree.
// It holds no session state: every operation receives a session and returns
// the next one, leaving the input untouched.
type Engine struct {
	index  *tree.Index
	opts   domain.Options
	treeID string
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOptions replaces the default tree options.
func WithOptions(opts domain.Options) EngineOption {
	return func(e *Engine) {
		e.opts = opts
		if e.opts.SelectionOrder == "" {
			e.opts.SelectionOrder = domain.OrderDocument
		}
	}
}

// WithTreeID tags sessions and events with the id of the tree.
func WithTreeID(id string) EngineOption {
	return func(e *Engine) {
		e.treeID = id
	}
}

// WithClock overrides the time source used for UpdatedAt and event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine indexes items and returns an engine bound to them.
// Invalid trees (empty or duplicate ids) are rejected with a tree.AggregateError.
func NewEngine(items []domain.Item, opts ...EngineOption) (*Engine, error) {
	idx, err := tree.NewIndex(items)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		index:  idx,
		opts:   domain.DefaultOptions(),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Index exposes the immutable id arena of the tree.
func (e *Engine) Index() *tree.Index {
	return e.index
}

// Options returns the options the engine runs with.
func (e *Engine) Options() domain.Options {
	return e.opts
}

// TreeID returns the tree id configured with WithTreeID.
func (e *Engine) TreeID() string {
	return e.treeID
}

// Start creates a fresh session where every item, at every depth, is
// unchecked, determinate and collapsed.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.Session {
	sess := domain.NewSession(sessionID, e.treeID)
	for _, id := range e.index.Order() {
		sess.States[id] = domain.ItemState{}
	}
	sess.UpdatedAt = e.now()

	e.logger.Debug("session started", "session_id", sessionID, "tree_id", e.treeID, "items", e.index.Len())
	e.emitReset(ctx, sess)
	return sess
}

// Selected materializes the selection of sess in the configured order.
// The result is never nil.
func (e *Engine) Selected(sess *domain.Session) []string {
	if sess == nil {
		return []string{}
	}
	if e.opts.SelectionOrder == domain.OrderInsertion {
		return sess.Selection.IDs()
	}
	out := make([]string, 0, sess.Selection.Len())
	for _, id := range e.index.Order() {
		if sess.Selection.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
