package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/internal/presentation/tui"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/tree"
	"github.com/muesli/termenv"
)

// TreeView draws the current state of a tree.
type TreeView func(t *thicket.Tree) string

// Runner is an interactive command loop over a mounted thicket.Tree.
// Every committed change is saved to Store under SessionID, so a later run
// with the same id resumes where the previous one stopped.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for durable sessions.
	// If nil, sessions are ephemeral.
	Store     ports.StateStore
	SessionID string

	// View draws the tree. Defaults to uncolored lines with item ids.
	View TreeView
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PlainView draws t without colors, showing ids so they can be typed back.
func PlainView(t *thicket.Tree) string {
	return tui.NewTreeRenderer(t.Options(), tui.WithProfile(termenv.Ascii), tui.WithIDs(true)).
		Render(t.Items(), t.ItemStates())
}

// Run executes the command loop until quit, end of input, or ctx is done.
// Cancellation is a clean exit.
func (r *Runner) Run(ctx context.Context, t *thicket.Tree) error {
	handler := r.resolveHandler()
	logger := r.resolveLogger()
	sessions := NewSessionManager(r.Store)

	resumed, err := sessions.Resume(ctx, r.SessionID, t)
	if err != nil {
		return err
	}
	if resumed {
		logger.Info("session resumed", "session_id", r.SessionID)
		if err := handler.SystemOutput(ctx, fmt.Sprintf("Resumed session %s.", r.SessionID)); err != nil {
			return err
		}
	}

	if err := r.show(ctx, handler, t); err != nil {
		return err
	}

	for {
		line, err := handler.Input(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, ErrInputTooLarge), errors.Is(err, ErrInvalidUTF8):
			if err := handler.SystemOutput(ctx, "Error: "+err.Error()); err != nil {
				return err
			}
			continue
		default:
			return fmt.Errorf("input error: %w", err)
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			if err := handler.SystemOutput(ctx, "Error: "+err.Error()); err != nil {
				return err
			}
			continue
		}
		if cmd.Verb == VerbNone {
			continue
		}
		if cmd.Verb == VerbQuit {
			return nil
		}

		before := t.Session().Version
		if err := r.execute(ctx, handler, t, cmd); err != nil {
			return err
		}
		if t.Session().Version != before {
			if err := sessions.Save(ctx, r.SessionID, t); err != nil {
				return fmt.Errorf("failed to save session %s: %w", r.SessionID, err)
			}
			logger.Debug("session saved", "session_id", r.SessionID, "command", cmd.Verb)
		}
	}
}

func (r *Runner) execute(ctx context.Context, handler IOHandler, t *thicket.Tree, cmd Command) error {
	switch cmd.Verb {
	case VerbHelp:
		return handler.SystemOutput(ctx, Help)
	case VerbList:
		return r.show(ctx, handler, t)
	case VerbSelected:
		sel := t.SelectedItems()
		if len(sel) == 0 {
			return handler.SystemOutput(ctx, "Nothing selected.")
		}
		return handler.SystemOutput(ctx, strings.Join(sel, "\n"))
	case VerbClear:
		t.ClearAll()
		return r.show(ctx, handler, t)
	}

	idx, err := tree.NewIndex(t.Items())
	if err != nil {
		return err
	}
	for _, id := range cmd.IDs {
		if !idx.Has(id) {
			if err := handler.SystemOutput(ctx, fmt.Sprintf("Error: unknown item %q.", id)); err != nil {
				return err
			}
			continue
		}

		switch cmd.Verb {
		case VerbExpand:
			if !t.Options().Expandable {
				return handler.SystemOutput(ctx, "Error: this tree is not expandable.")
			}
			t.ToggleExpansion(id)
			continue
		case VerbCheck:
			t.SetChecked(id, true)
		case VerbUncheck:
			t.SetChecked(id, false)
		case VerbToggle:
			t.SetChecked(id, !t.ItemState(id).Checked)
		}
		if idx.IsDisabled(id) {
			if err := handler.SystemOutput(ctx, fmt.Sprintf("Error: item %q is disabled.", id)); err != nil {
				return err
			}
		}
	}
	return r.show(ctx, handler, t)
}

func (r *Runner) show(ctx context.Context, handler IOHandler, t *thicket.Tree) error {
	view := r.View
	if view == nil {
		view = PlainView
	}
	sess := t.Session()
	return handler.Output(ctx, View{
		Rendered: view(t),
		States:   sess.States,
		Selected: t.SelectedItems(),
		Version:  sess.Version,
	})
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	return NewTextHandler(os.Stdin, os.Stdout)
}

func (r *Runner) resolveLogger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.NewNop()
}
