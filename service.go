package thicket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/google/uuid"
)

// Service drives many sessions over many trees. Trees come from a
// ports.TreeLoader and sessions live in the store behind a session.Manager,
// so a Service can be shared by server adapters and replicas.
//
// Every mutation loads the stored session under its lock, reconciles it with
// the current tree, applies the event and saves the result.
type Service struct {
	loader   ports.TreeLoader
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	newID    func() string

	mu      sync.RWMutex
	engines map[string]*runtime.Engine
}

var _ ports.SelectionService = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceHooks registers lifecycle hooks for every tree served.
// Hooks run while the session lock is held.
func WithServiceHooks(hooks domain.LifecycleHooks) ServiceOption {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithServiceLogger sets a custom structured logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides how ids of new sessions are generated (default UUIDv4).
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a Service over loader and the sessions of manager.
func NewService(loader ports.TreeLoader, manager *session.Manager, opts ...ServiceOption) *Service {
	s := &Service{
		loader:   loader,
		sessions: manager,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
		engines:  make(map[string]*runtime.Engine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch invalidates cached trees whenever the loader reports a change.
// It returns once watching started; watching stops when ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	w, ok := s.loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("current loader does not support watching")
	}
	ch, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for id := range ch {
			s.logger.Info("tree changed", "tree_id", id)
			s.Invalidate(id)
		}
	}()
	return nil
}

// Invalidate drops the cached engine of treeID, or of every tree when
// treeID is empty. Sessions are reconciled on their next access.
func (s *Service) Invalidate(treeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if treeID == "" {
		s.engines = make(map[string]*runtime.Engine)
		return
	}
	delete(s.engines, treeID)
}

// Engine returns the engine serving treeID, building it on first use.
func (s *Service) Engine(treeID string) (*runtime.Engine, error) {
	s.mu.RLock()
	eng, ok := s.engines[treeID]
	s.mu.RUnlock()
	if ok {
		return eng, nil
	}

	tr, err := s.loader.GetTree(treeID)
	if err != nil {
		return nil, fmt.Errorf("load tree %q: %w", treeID, err)
	}
	eng, err = runtime.NewEngine(tr.Items,
		runtime.WithOptions(tr.ResolvedOptions()),
		runtime.WithTreeID(treeID),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithLogger(s.logger.With("tree_id", treeID)),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid tree %q: %w", treeID, err)
	}

	s.mu.Lock()
	s.engines[treeID] = eng
	s.mu.Unlock()
	return eng, nil
}

// ListTrees returns the ids of the trees available from the loader.
func (s *Service) ListTrees(_ context.Context) ([]string, error) {
	return s.loader.ListTrees()
}

// Tree returns the definition of treeID.
func (s *Service) Tree(_ context.Context, treeID string) (domain.Tree, error) {
	return s.loader.GetTree(treeID)
}

// Open resumes sessionID or starts it from treeID. An empty sessionID
// creates a new session. Resuming a session of another tree fails with
// domain.ErrTreeMismatch.
func (s *Service) Open(ctx context.Context, treeID, sessionID string) (*domain.Update, error) {
	if sessionID == "" {
		sessionID = s.newID()
	}

	sess, created, err := s.sessions.LoadOrStart(ctx, sessionID, func(ctx context.Context) (*domain.Session, error) {
		if treeID == "" {
			return nil, fmt.Errorf("open session %q: %w", sessionID, domain.ErrTreeNotFound)
		}
		eng, err := s.Engine(treeID)
		if err != nil {
			return nil, err
		}
		return eng.Start(ctx, sessionID), nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("session opened", "session_id", sessionID, "tree_id", treeID)
		eng, err := s.Engine(sess.TreeID)
		if err != nil {
			return nil, err
		}
		return &domain.Update{Session: sess, Selected: eng.Selected(sess), Diff: domain.Diff(nil, sess)}, nil
	}

	if treeID != "" && sess.TreeID != treeID {
		return nil, fmt.Errorf("open session %q of tree %q as %q: %w", sessionID, sess.TreeID, treeID, domain.ErrTreeMismatch)
	}
	return s.Get(ctx, sessionID)
}

// Get returns the stored session, reconciled with the current tree.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Update, error) {
	return s.update(ctx, sessionID, func(_ context.Context, _ *runtime.Engine, cur *domain.Session) (*domain.Session, error) {
		return cur, nil
	})
}

// SetChecked applies a checkbox change to a stored session.
func (s *Service) SetChecked(ctx context.Context, sessionID, itemID string, checked bool) (*domain.Update, error) {
	return s.update(ctx, sessionID, func(ctx context.Context, eng *runtime.Engine, cur *domain.Session) (*domain.Session, error) {
		return eng.SetChecked(ctx, cur, itemID, checked)
	})
}

// ToggleExpansion flips the expanded flag of an item of a stored session.
func (s *Service) ToggleExpansion(ctx context.Context, sessionID, itemID string) (*domain.Update, error) {
	return s.update(ctx, sessionID, func(ctx context.Context, eng *runtime.Engine, cur *domain.Session) (*domain.Session, error) {
		return eng.ToggleExpansion(ctx, cur, itemID)
	})
}

// ClearAll empties the selection of a stored session.
func (s *Service) ClearAll(ctx context.Context, sessionID string) (*domain.Update, error) {
	return s.update(ctx, sessionID, func(ctx context.Context, eng *runtime.Engine, cur *domain.Session) (*domain.Session, error) {
		return eng.ClearAll(ctx, cur)
	})
}

// Delete removes a stored session.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session_id", sessionID)
	return nil
}

// ListSessions returns the ids of every stored session.
func (s *Service) ListSessions(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}

type operation func(ctx context.Context, eng *runtime.Engine, cur *domain.Session) (*domain.Session, error)

func (s *Service) update(ctx context.Context, sessionID string, op operation) (*domain.Update, error) {
	var eng *runtime.Engine
	before, after, err := s.sessions.Update(ctx, sessionID, func(ctx context.Context, cur *domain.Session) (*domain.Session, error) {
		var err error
		eng, err = s.Engine(cur.TreeID)
		if err != nil {
			return nil, err
		}
		return op(ctx, eng, eng.Reconcile(cur))
	})
	if err != nil {
		return nil, err
	}
	return &domain.Update{
		Session:  after,
		Selected: eng.Selected(after),
		Diff:     domain.Diff(before, after),
	}, nil
}
