package thicket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/domain"
)

// Tree is a mounted selection tree: the high-level entry point for embedding
// tri-state selection in Go programs. It owns one session and is safe for
// concurrent use. Callbacks run after the internal lock is released.
type Tree struct {
	mu      sync.Mutex
	engine  *runtime.Engine
	session *domain.Session

	opts      domain.Options
	treeID    string
	sessionID string
	onChange  func([]string)
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	pending []func()
}

// Option defines a functional option for configuring a Tree.
type Option func(*Tree)

// WithExpandable enables ToggleExpansion.
func WithExpandable(enabled bool) Option {
	return func(t *Tree) {
		t.opts.Expandable = enabled
	}
}

// WithPartialSelection controls whether parents with mixed children are
// marked indeterminate (default true).
func WithPartialSelection(enabled bool) Option {
	return func(t *Tree) {
		t.opts.AllowPartialSelection = enabled
	}
}

// WithShowIcons is a renderer hint.
func WithShowIcons(enabled bool) Option {
	return func(t *Tree) {
		t.opts.ShowIcons = enabled
	}
}

// WithShowDescriptions is a renderer hint.
func WithShowDescriptions(enabled bool) Option {
	return func(t *Tree) {
		t.opts.ShowDescriptions = enabled
	}
}

// WithSelectionOrder chooses how SelectedItems and the selection callback
// order ids (default domain.OrderDocument).
func WithSelectionOrder(order domain.SelectionOrder) Option {
	return func(t *Tree) {
		t.opts.SelectionOrder = order
	}
}

// WithOptions replaces every option at once, e.g. with the options declared
// by a tree document.
func WithOptions(opts domain.Options) Option {
	return func(t *Tree) {
		t.opts = opts
	}
}

// WithSelectionChange registers the callback that receives the full selection
// every time it changes.
func WithSelectionChange(fn func(selected []string)) Option {
	return func(t *Tree) {
		t.onChange = fn
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tree) {
		t.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithTreeID tags the session and events with a tree id.
func WithTreeID(id string) Option {
	return func(t *Tree) {
		t.treeID = id
	}
}

// WithSessionID sets the id of the underlying session (default "default").
func WithSessionID(id string) Option {
	return func(t *Tree) {
		t.sessionID = id
	}
}

// New mounts items. Every item starts unchecked and collapsed.
// Trees with empty or duplicate ids are rejected.
func New(items []domain.Item, opts ...Option) (*Tree, error) {
	t := &Tree{
		opts:      domain.DefaultOptions(),
		sessionID: "default",
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	if t.treeID != "" {
		t.logger = t.logger.With("tree_id", t.treeID)
	}

	t.mu.Lock()
	err := t.mount(context.Background(), items)
	calls := t.drain()
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	run(calls)
	return t, nil
}

// mount builds a new engine over items and starts a fresh session.
// Callers hold t.mu.
func (t *Tree) mount(ctx context.Context, items []domain.Item) error {
	eng, err := t.build(items)
	if err != nil {
		return err
	}
	t.engine = eng
	t.opts = eng.Options()
	t.session = eng.Start(ctx, t.sessionID)
	return nil
}

// build creates an engine over items with the current options and hooks.
func (t *Tree) build(items []domain.Item) (*runtime.Engine, error) {
	hooks := t.hooks
	if t.onChange != nil {
		onChange := t.onChange
		hooks = domain.ChainHooks(hooks, domain.LifecycleHooks{
			OnSelectionChange: func(_ context.Context, e *domain.SelectionEvent) {
				onChange(e.Selected)
			},
		})
	}

	return runtime.NewEngine(items,
		runtime.WithOptions(t.opts),
		runtime.WithTreeID(t.treeID),
		runtime.WithLifecycleHooks(deferHooks(hooks, t.enqueue)),
		runtime.WithLogger(t.logger),
	)
}

// SetChecked applies a checkbox change to id, its descendants and its
// ancestors. Unknown and disabled ids are ignored.
func (t *Tree) SetChecked(id string, checked bool) {
	t.apply(func(ctx context.Context) (*domain.Session, error) {
		return t.engine.SetChecked(ctx, t.session, id, checked)
	})
}

// ToggleExpansion flips the expanded flag of id. It does nothing when the
// tree is not expandable or id is unknown.
func (t *Tree) ToggleExpansion(id string) {
	t.apply(func(ctx context.Context) (*domain.Session, error) {
		return t.engine.ToggleExpansion(ctx, t.session, id)
	})
}

// ClearAll unchecks every item. Expansion is preserved.
func (t *Tree) ClearAll() {
	t.apply(func(ctx context.Context) (*domain.Session, error) {
		return t.engine.ClearAll(ctx, t.session)
	})
}

// SetItems replaces the tree and resets every state. Ids of the previous
// tree vanish. The selection callback fires if the selection was not empty.
func (t *Tree) SetItems(items []domain.Item) error {
	ctx := context.Background()

	t.mu.Lock()
	prev := t.session
	err := t.mount(ctx, items)
	if err == nil && prev.Selection.Len() > 0 {
		t.engine.NotifySelection(ctx, t.session)
	}
	calls := t.drain()
	t.mu.Unlock()

	run(calls)
	return err
}

// Reload swaps in a new version of the tree and keeps the state of every id
// that survives, in one step. Vanished ids are dropped and parents are
// recomputed. A non-nil opts replaces the options. On error the tree is
// left as it was.
func (t *Tree) Reload(ctx context.Context, items []domain.Item, opts *domain.Options) error {
	t.mu.Lock()
	prevOpts := t.opts
	if opts != nil {
		t.opts = *opts
	}
	eng, err := t.build(items)
	if err != nil {
		t.opts = prevOpts
		t.mu.Unlock()
		return err
	}
	prev := t.session
	t.engine = eng
	t.opts = eng.Options()
	t.session = eng.Reconcile(prev)
	if !prev.Selection.Equal(t.session.Selection) {
		eng.NotifySelection(ctx, t.session)
	}
	calls := t.drain()
	t.mu.Unlock()

	run(calls)
	return nil
}

// Restore replaces the session with sess, reconciled against the current
// items. It is how persisted sessions are resumed.
func (t *Tree) Restore(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	if t.treeID != "" && sess.TreeID != "" && sess.TreeID != t.treeID {
		return fmt.Errorf("restore session %q of tree %q: %w", sess.ID, sess.TreeID, domain.ErrTreeMismatch)
	}

	t.mu.Lock()
	prev := t.session
	next := t.engine.Reconcile(sess)
	t.session = next
	t.sessionID = next.ID
	if !prev.Selection.Equal(next.Selection) {
		t.engine.NotifySelection(ctx, next)
	}
	calls := t.drain()
	t.mu.Unlock()

	run(calls)
	return nil
}

// ItemStates returns a copy of every item state keyed by id.
func (t *Tree) ItemStates() map[string]domain.ItemState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]domain.ItemState, len(t.session.States))
	for id, st := range t.session.States {
		out[id] = st
	}
	return out
}

// ItemState returns the flags of a single item.
func (t *Tree) ItemState(id string) domain.ItemState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.State(id)
}

// SelectedItems returns the selected ids in the configured order.
func (t *Tree) SelectedItems() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Selected(t.session)
}

// Items returns a copy of the mounted items.
func (t *Tree) Items() []domain.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Index().Items()
}

// Options returns the options the tree runs with.
func (t *Tree) Options() domain.Options {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opts
}

// Session returns a snapshot of the underlying session, suitable for a
// ports.StateStore.
func (t *Tree) Session() *domain.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Snapshot()
}

// apply runs op under the lock and commits its result. Policy errors
// (unknown, disabled, not expandable) leave the session as it was.
func (t *Tree) apply(op func(ctx context.Context) (*domain.Session, error)) {
	ctx := context.Background()

	t.mu.Lock()
	next, err := op(ctx)
	switch {
	case err == nil:
		t.session = next
	case isPolicy(err):
		t.logger.Debug("event ignored", "err", err)
	default:
		t.logger.Error("selection update failed", "err", err)
	}
	calls := t.drain()
	t.mu.Unlock()

	run(calls)
}

func isPolicy(err error) bool {
	return errors.Is(err, domain.ErrItemNotFound) ||
		errors.Is(err, domain.ErrItemDisabled) ||
		errors.Is(err, domain.ErrNotExpandable)
}

// enqueue buffers a callback until the lock is released. Callers hold t.mu.
func (t *Tree) enqueue(fn func()) {
	t.pending = append(t.pending, fn)
}

func (t *Tree) drain() []func() {
	calls := t.pending
	t.pending = nil
	return calls
}

func run(calls []func()) {
	for _, fn := range calls {
		fn()
	}
}

// deferHooks wraps every hook so that it is queued instead of called.
func deferHooks(h domain.LifecycleHooks, enqueue func(func())) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnToggle:          deferred(h.OnToggle, enqueue),
		OnExpand:          deferred(h.OnExpand, enqueue),
		OnClear:           deferred(h.OnClear, enqueue),
		OnReset:           deferred(h.OnReset, enqueue),
		OnSelectionChange: deferred(h.OnSelectionChange, enqueue),
		OnIgnored:         deferred(h.OnIgnored, enqueue),
	}
}

func deferred[E any](fn func(context.Context, *E), enqueue func(func())) func(context.Context, *E) {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, e *E) {
		enqueue(func() { fn(ctx, e) })
	}
}
