package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/tree"
)

// Loader implements ports.TreeLoader and ports.Watchable using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu       sync.RWMutex
	trees    map[string]domain.Tree
	watchers []chan string
}

// NewLoader creates an empty Loader. Populate it with Put.
func NewLoader() *Loader {
	return &Loader{trees: make(map[string]domain.Tree)}
}

// NewFromTrees creates a Loader holding the given trees.
// Every tree is validated, so tests fail early on fixture mistakes.
func NewFromTrees(trees ...domain.Tree) (*Loader, error) {
	l := NewLoader()
	for _, tr := range trees {
		if err := l.Put(tr); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Put adds or replaces a tree and notifies watchers.
func (l *Loader) Put(tr domain.Tree) error {
	if tr.ID == "" {
		return fmt.Errorf("tree missing ID")
	}
	if err := tree.Validate(tr.Items); err != nil {
		return fmt.Errorf("invalid tree %s: %w", tr.ID, err)
	}
	tr.Items = domain.CloneItems(tr.Items)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.trees[tr.ID] = tr
	for _, ch := range l.watchers {
		select {
		case ch <- tr.ID:
		default: // slow watcher, drop
		}
	}
	return nil
}

// GetTree returns a copy of the tree with the given id.
func (l *Loader) GetTree(id string) (domain.Tree, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tr, ok := l.trees[id]
	if !ok {
		return domain.Tree{}, fmt.Errorf("tree %s: %w", id, domain.ErrTreeNotFound)
	}
	tr.Items = domain.CloneItems(tr.Items)
	return tr, nil
}

// ListTrees returns all available tree IDs.
func (l *Loader) ListTrees() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.trees))
	for k := range l.trees {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

// Watch reports the id of every tree passed to Put after the call.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
