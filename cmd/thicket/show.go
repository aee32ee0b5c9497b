package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/aretw0/thicket/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var showCmd = &cobra.Command{
	Use:   "show <tree>",
	Short: "Print a tree and its selection",
	Long: `Prints the tree title and description as Markdown followed by the items.
With --session the stored selection is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := configFrom(cmd)
		showIDs, _ := cmd.Flags().GetBool("ids")

		t, tr, err := cli.MountTree(cmd.Context(), c, args[0], c.Logger())
		if err != nil {
			return err
		}
		if _, err := cli.ResumeSession(cmd.Context(), c, t); err != nil {
			return err
		}

		tty := term.IsTerminal(int(os.Stdout.Fd()))
		profile := termenv.Ascii
		if tty {
			profile = termenv.EnvColorProfile()
		}

		out := cmd.OutOrStdout()
		header := headerMarkdown(tr.Title, tr.Description)
		if tty {
			render := tui.NewMarkdownRenderer(80)
			if rendered, err := render(header); err == nil {
				header = rendered
			}
		}
		fmt.Fprint(out, header)
		fmt.Fprint(out, tui.NewTreeRenderer(t.Options(), tui.WithProfile(profile), tui.WithIDs(showIDs)).
			Render(t.Items(), t.ItemStates()))
		return nil
	},
}

func headerMarkdown(title, description string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if description != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(description))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("ids", false, "Show item ids next to labels")
}
