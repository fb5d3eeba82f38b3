package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [content.yaml]",
	Short: "Check a content table for consistency",
	Long: `Loads a content table and reports every problem at once: unknown step
references, duplicate ids, bad node orders, invalid matching rules and
mini-game parameters. Without a file the embedded variant is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := opts.Content
		if len(args) > 0 {
			path = args[0]
		}

		var (
			table *content.Table
			err   error
		)
		if path != "" {
			table, err = content.Load(path)
		} else {
			table, err = content.Variant(opts.Variant)
		}

		out := cmd.OutOrStdout()
		if err != nil {
			var aggr *content.AggregateError
			if errors.As(err, &aggr) {
				for _, e := range aggr.Errors {
					fmt.Fprintf(out, "  - %v\n", e)
				}
				return fmt.Errorf("validation failed: %d problem(s)", len(aggr.Errors))
			}
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Fprintf(out, "%s: %d steps, %d nodes. Content is valid! ✅\n", table.Title, len(table.Graph()), len(table.Nodes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
