package file

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/tree"
	"github.com/fsnotify/fsnotify"
)

// Loader implements ports.TreeLoader over a directory of tree documents
// (one tree per *.yaml, *.yml or *.json file). Files are read on every call,
// so edits are picked up without restarts; Watch reports them as they happen.
type Loader struct {
	Dir      string
	logger   *slog.Logger
	debounce time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDebounce coalesces bursts of file events (default 100ms).
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.debounce = d
	}
}

// NewLoader creates a Loader for dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		Dir:      dir,
		logger:   logging.NewNop(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type entry struct {
	path string
	tree domain.Tree
	err  error
}

func (l *Loader) scan() ([]entry, error) {
	files, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree directory: %w", err)
	}

	var out []entry
	for _, f := range files {
		if f.IsDir() || !isTreeFile(f.Name()) {
			continue
		}
		path := filepath.Join(l.Dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			out = append(out, entry{path: path, err: err})
			continue
		}
		tr, err := Parse(f.Name(), data)
		out = append(out, entry{path: path, tree: tr, err: err})
	}
	return out, nil
}

// GetTree returns the tree with the given id, validated.
func (l *Loader) GetTree(id string) (domain.Tree, error) {
	entries, err := l.scan()
	if err != nil {
		return domain.Tree{}, err
	}
	for _, e := range entries {
		if e.err != nil {
			if TreeID(e.path) == id {
				return domain.Tree{}, e.err
			}
			continue
		}
		if e.tree.ID != id {
			continue
		}
		if err := tree.Validate(e.tree.Items); err != nil {
			return domain.Tree{}, fmt.Errorf("invalid tree %s (%s): %w", id, e.path, err)
		}
		return e.tree, nil
	}
	return domain.Tree{}, fmt.Errorf("tree %s: %w", id, domain.ErrTreeNotFound)
}

// ListTrees returns the ids of every parseable document, sorted.
func (l *Loader) ListTrees() ([]string, error) {
	entries, err := l.scan()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string)
	ids := []string{}
	for _, e := range entries {
		if e.err != nil {
			l.logger.Warn("skipping unreadable tree document", "path", e.path, "err", e.err)
			continue
		}
		if prev, ok := seen[e.tree.ID]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", e.tree.ID, prev, e.path)
		}
		seen[e.tree.ID] = e.path
		ids = append(ids, e.tree.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// Check parses and validates every document of the directory and reports
// all problems at once as a tree.AggregateError.
func (l *Loader) Check() error {
	entries, err := l.scan()
	if err != nil {
		return err
	}
	var errs []error
	seen := make(map[string]string)
	for _, e := range entries {
		if e.err != nil {
			errs = append(errs, e.err)
			continue
		}
		if prev, ok := seen[e.tree.ID]; ok {
			errs = append(errs, fmt.Errorf("%s: tree id %q already defined in %s", e.path, e.tree.ID, prev))
		}
		seen[e.tree.ID] = e.path
		if err := tree.Validate(e.tree.Items); err != nil {
			for _, v := range tree.ValidationErrors(err) {
				errs = append(errs, fmt.Errorf("%s: %w", e.path, v))
			}
		}
	}
	if len(errs) > 0 {
		return &tree.AggregateError{Errors: errs}
	}
	return nil
}

// Watch implements ports.Watchable with fsnotify. It reports the id of each
// tree whose file was written, created, removed or renamed. When an edit
// changes the id a document declares, both the old and the new id are
// reported.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	known := make(map[string]string)
	if entries, err := l.scan(); err == nil {
		for _, e := range entries {
			if e.err == nil {
				known[e.path] = e.tree.ID
			}
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(l.Dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.Dir, err)
	}

	ch := make(chan string, 8)
	go func() {
		defer close(ch)
		defer w.Close()

		pending := make(map[string]struct{})
		timer := time.NewTimer(time.Hour)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-w.Events:
				if !ok {
					return
				}
				if !isTreeFile(evt.Name) || evt.Op == fsnotify.Chmod {
					continue
				}
				for _, id := range l.changed(known, evt) {
					pending[id] = struct{}{}
				}
				timer.Reset(l.debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("tree watcher error", "err", err)
			case <-timer.C:
				for id := range pending {
					select {
					case ch <- id:
					case <-ctx.Done():
						return
					}
				}
				pending = make(map[string]struct{})
			}
		}
	}()
	return ch, nil
}

// changed updates known for evt and returns the tree ids it touches.
func (l *Loader) changed(known map[string]string, evt fsnotify.Event) []string {
	path := filepath.Join(l.Dir, filepath.Base(evt.Name))
	prev, hadPrev := known[path]

	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		delete(known, path)
		if hadPrev {
			return []string{prev}
		}
		return []string{TreeID(path)}
	}

	id, ok := l.idOf(path)
	if !ok {
		// Half-written or broken documents keep their last known id.
		if hadPrev {
			return []string{prev}
		}
		return []string{id}
	}
	known[path] = id
	if hadPrev && prev != id {
		return []string{prev, id}
	}
	return []string{id}
}

// idOf resolves the tree id declared by path, falling back to its file name.
func (l *Loader) idOf(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return TreeID(path), false
	}
	tr, err := Parse(path, data)
	if err != nil {
		return TreeID(path), false
	}
	return tr.ID, true
}
