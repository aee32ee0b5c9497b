package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/tree"
)

// Loader adapts the Loam library to the thicket TreeLoader interface.
// Each Markdown, JSON or YAML document of the repository is one tree: its
// front matter declares the items and the Markdown body becomes the
// description.
type Loader struct {
	Repo *loam.TypedRepository[TreeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[TreeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers consistent across Markdown, JSON and YAML.
	// ReadOnly avoids the dev-mode sandbox: trees are never written back.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TreeMetadata](repo)), nil
}

// GetTree returns the tree whose normalized id matches id.
func (l *Loader) GetTree(id string) (domain.Tree, error) {
	trees, err := l.load(context.Background())
	if err != nil {
		return domain.Tree{}, err
	}
	tr, ok := trees[trimExtension(id)]
	if !ok {
		return domain.Tree{}, fmt.Errorf("tree %s: %w", id, domain.ErrTreeNotFound)
	}
	if err := tree.Validate(tr.Items); err != nil {
		return domain.Tree{}, fmt.Errorf("invalid tree %s: %w", id, err)
	}
	return tr, nil
}

// ListTrees lists every tree in the repository.
func (l *Loader) ListTrees() ([]string, error) {
	trees, err := l.load(context.Background())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(trees))
	for id := range trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) load(ctx context.Context) (map[string]domain.Tree, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	trees := make(map[string]domain.Tree, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		desc := doc.Data.Description
		if desc == "" {
			// List only carries the front matter.
			full, err := l.Repo.Get(ctx, doc.ID)
			if err != nil {
				return nil, fmt.Errorf("loam get failed for %s: %w", doc.ID, err)
			}
			desc = strings.TrimSpace(full.Content)
		}
		trees[id] = domain.Tree{
			ID:          id,
			Title:       doc.Data.Title,
			Description: desc,
			Items:       doc.Data.Items,
			Options:     doc.Data.Options.Resolve(),
		}
	}
	return trees, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	// Watch for all relevant files (recursive) using doublestar pattern supported by Loam/Doublestar
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces on its own; pass the normalized id up the chain.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
