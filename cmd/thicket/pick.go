package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// pickCmd represents the pick command
var pickCmd = &cobra.Command{
	Use:   "pick <tree>",
	Short: "Select items of a tree interactively",
	Long: `Starts a command loop over one tree. Type 'help' for the commands.
With --session the selection is saved after every change and resumed on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		watchMode, _ := cmd.Flags().GetBool("watch")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.RunPick(ctx, configFrom(cmd), cli.PickOptions{
			TreeID:      args[0],
			In:          os.Stdin,
			Out:         os.Stdout,
			Interactive: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
			JSON:        jsonMode,
			Watch:       watchMode,
		})
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)

	pickCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	pickCmd.Flags().BoolP("watch", "w", false, "Reload the tree when its document changes")
}
