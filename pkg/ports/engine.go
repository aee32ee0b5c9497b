package ports

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// Selector is the stateless selection core: it derives the next session from
// the current one and never keeps state between calls.
type Selector interface {
	Start(ctx context.Context, sessionID string) *domain.Session
	SetChecked(ctx context.Context, session *domain.Session, itemID string, checked bool) (*domain.Session, error)
	ToggleExpansion(ctx context.Context, session *domain.Session, itemID string) (*domain.Session, error)
	ClearAll(ctx context.Context, session *domain.Session) (*domain.Session, error)
	Reconcile(session *domain.Session) *domain.Session
	Selected(session *domain.Session) []string
}

// SelectionService is the driving port used by the HTTP and MCP adapters.
// It resolves trees, serializes access per session and persists every change.
type SelectionService interface {
	ListTrees(ctx context.Context) ([]string, error)
	Tree(ctx context.Context, treeID string) (domain.Tree, error)

	// Open resumes sessionID when it exists, or starts it from treeID.
	// An empty sessionID creates a new session with a generated id.
	Open(ctx context.Context, treeID, sessionID string) (*domain.Update, error)
	Get(ctx context.Context, sessionID string) (*domain.Update, error)
	Delete(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]string, error)

	SetChecked(ctx context.Context, sessionID, itemID string, checked bool) (*domain.Update, error)
	ToggleExpansion(ctx context.Context, sessionID, itemID string) (*domain.Update, error)
	ClearAll(ctx context.Context, sessionID string) (*domain.Update, error)
}
