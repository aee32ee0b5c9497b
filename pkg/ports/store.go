package ports

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// StateStore defines the interface for persisting selection sessions.
// It lets a selection survive restarts and be shared between replicas.
type StateStore interface {
	// Save persists the session under the given session ID.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given session ID.
	// Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of every stored session.
	List(ctx context.Context) ([]string, error)
}
