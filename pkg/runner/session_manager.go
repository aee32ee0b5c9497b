package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

// SessionManager handles the lifecycle of a durable REPL session.
// It coordinates between the Runner, the Tree, and the StateStore.
type SessionManager struct {
	Store ports.StateStore
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(store ports.StateStore) *SessionManager {
	return &SessionManager{
		Store: store,
	}
}

// Resume restores the stored session into t. It reports false when there is
// nothing to resume: no store, no session id, or an unknown session. A stored
// session of another tree fails with domain.ErrTreeMismatch.
func (sm *SessionManager) Resume(ctx context.Context, sessionID string, t *thicket.Tree) (bool, error) {
	if sessionID == "" || sm.Store == nil {
		return false, nil
	}

	sess, err := sm.Store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if err := t.Restore(ctx, sess); err != nil {
		return false, fmt.Errorf("failed to restore session %s: %w", sessionID, err)
	}
	return true, nil
}

// Save persists the current session of t.
func (sm *SessionManager) Save(ctx context.Context, sessionID string, t *thicket.Tree) error {
	if sessionID == "" || sm.Store == nil {
		return nil
	}
	sess := t.Session()
	sess.ID = sessionID
	return sm.Store.Save(ctx, sessionID, sess)
}
