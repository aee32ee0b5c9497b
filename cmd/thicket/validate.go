package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/thicket/pkg/adapters/file"
	"github.com/aretw0/thicket/pkg/tree"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check every tree document for errors",
	Long:  `Parses every tree document in the directory and reports duplicate or empty ids, unknown keys and id collisions between files.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := configFrom(cmd).Dir
		if len(args) > 0 {
			dir = args[0]
		}

		out := cmd.OutOrStdout()
		err := file.NewLoader(dir).Check()
		var agg *tree.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				fmt.Fprintf(out, "  - %v\n", e)
			}
			return fmt.Errorf("validation failed: %d problem(s)", len(agg.Errors))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "All trees are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
