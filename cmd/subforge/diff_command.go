package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subforge/internal/scriptdiff"
)

func newDiffCommand(ctx *commandContext) *cobra.Command {
	var contextLines int
	var stat bool
	cmd := &cobra.Command{
		Use:   "diff <base> <head>",
		Short: "Compare two scripts after normalizing both",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			head, err := loadScript(cmd, ctx, args[1])
			if err != nil {
				return err
			}
			result := scriptdiff.Documents(base, head)
			out := cmd.OutOrStdout()
			if !result.Changed() {
				fmt.Fprintln(out, "Scripts are identical")
				return nil
			}
			if !stat {
				fmt.Fprint(out, colorizeDiff(result.Format(contextLines), shouldColorize(out)))
			}
			fmt.Fprintf(out, "%d added, %d removed\n", result.Added, result.Removed)
			return nil
		},
	}
	cmd.Flags().IntVarP(&contextLines, "context", "U", 2, "Unchanged lines shown around each change (-1 for all)")
	cmd.Flags().BoolVar(&stat, "stat", false, "Only print the change counts")
	return cmd
}
