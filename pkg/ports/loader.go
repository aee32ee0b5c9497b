package ports

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// TreeLoader defines how tree definitions are retrieved.
// This allows the storage layer (Loam, files, memory) to be decoupled.
type TreeLoader interface {
	// GetTree returns the tree with the given id.
	// Returns domain.ErrTreeNotFound if it does not exist.
	GetTree(id string) (domain.Tree, error)

	// ListTrees returns the ids of every available tree, sorted.
	ListTrees() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the id of each tree that changed.
	// An empty id means the loader cannot tell which tree changed.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
