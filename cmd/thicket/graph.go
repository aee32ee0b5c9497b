package main

import (
	"fmt"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/aretw0/thicket/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <tree>",
	Short: "Export the tree as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the tree. With --session the
stored selection is drawn on top of it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := configFrom(cmd)
		t, _, err := cli.MountTree(cmd.Context(), c, args[0], c.Logger())
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		resumed, err := cli.ResumeSession(cmd.Context(), c, t)
		if err != nil {
			return err
		}
		if resumed {
			overlay = &graph.Overlay{States: t.ItemStates()}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(t.Items(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
