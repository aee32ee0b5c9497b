package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/presentation/tui"
	"github.com/aretw0/thicket/pkg/observability"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/muesli/termenv"
)

// PickOptions configures one interactive selection run.
type PickOptions struct {
	TreeID string
	In     io.Reader
	Out    io.Writer

	// Interactive enables the banner and colored output (stdout is a TTY).
	Interactive bool
	JSON        bool
	Watch       bool
}

// RunPick mounts a tree and runs the command loop on it until the user
// quits or input ends. With a session id the selection is persisted after
// every change and resumed on the next run.
func RunPick(ctx context.Context, c Config, opts PickOptions) error {
	logger := c.Logger()

	loader, err := NewLoader(c, logger)
	if err != nil {
		return err
	}
	t, tr, err := mount(loader, opts.TreeID, logger, thicket.WithLifecycleHooks(observability.LogHooks(logger)))
	if err != nil {
		return err
	}

	var store ports.StateStore
	if c.SessionID != "" {
		if store, _, err = NewStore(c); err != nil {
			return err
		}
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		handler = runner.NewTextHandler(opts.In, opts.Out)
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithStore(store),
		runner.WithSessionID(c.SessionID),
	}
	if opts.Interactive && !opts.JSON {
		tui.PrintBanner(opts.Out, termenv.EnvColorProfile())
		title := tr.Title
		if title == "" {
			title = tr.ID
		}
		printSystemMessage(opts.Out, "Picking from %q. Type help for commands.", title)
		runnerOpts = append(runnerOpts, runner.WithTreeView(colorView(termenv.EnvColorProfile())))
	}

	if opts.Watch {
		w, ok := loader.(ports.Watchable)
		if !ok {
			return fmt.Errorf("loader %q does not support watching", c.Loader)
		}
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := WatchTree(watchCtx, w, loader, t, tr.ID, logger); err != nil {
			return err
		}
	}

	return runner.NewRunner(runnerOpts...).Run(ctx, t)
}

func colorView(p termenv.Profile) runner.TreeView {
	return func(t *thicket.Tree) string {
		return tui.NewTreeRenderer(t.Options(), tui.WithProfile(p), tui.WithIDs(true)).
			Render(t.Items(), t.ItemStates())
	}
}

// WatchTree reloads t whenever the loader reports a change to treeID.
// States of surviving ids are kept and option changes are applied. It
// returns once watching started.
func WatchTree(ctx context.Context, w ports.Watchable, loader ports.TreeLoader, t *thicket.Tree, treeID string, logger *slog.Logger) error {
	ch, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch trees: %w", err)
	}
	go func() {
		for id := range ch {
			if id != treeID {
				continue
			}
			tr, err := loader.GetTree(id)
			if err != nil {
				logger.Warn("reload failed", "tree_id", id, "err", err)
				continue
			}
			opts := tr.ResolvedOptions()
			if err := t.Reload(ctx, tr.Items, &opts); err != nil {
				logger.Warn("reload rejected", "tree_id", id, "err", err)
				continue
			}
			logger.Info("tree reloaded", "tree_id", id)
		}
	}()
	return nil
}

// ResumeSession restores the session named by c.SessionID into t. It
// reports false when no session id is set or the session does not exist.
func ResumeSession(ctx context.Context, c Config, t *thicket.Tree) (bool, error) {
	if c.SessionID == "" {
		return false, nil
	}
	store, _, err := NewStore(c)
	if err != nil {
		return false, err
	}
	return runner.NewSessionManager(store).Resume(ctx, c.SessionID, t)
}
