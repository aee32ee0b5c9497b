package runner

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// View is what the runner shows after every command.
type View struct {
	// Rendered is the tree as drawn by the runner's TreeView.
	Rendered string                      `json:"-"`
	States   map[string]domain.ItemState `json:"states"`
	Selected []string                    `json:"selected"`
	Version  uint64                      `json:"version"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (scripted) modes.
type IOHandler interface {
	// Output presents the tree.
	Output(ctx context.Context, view View) error

	// Input reads the next command line. It returns io.EOF when input ends.
	Input(ctx context.Context) (string, error)

	// SystemOutput reports feedback that is not part of the tree (errors, help).
	SystemOutput(ctx context.Context, msg string) error
}
