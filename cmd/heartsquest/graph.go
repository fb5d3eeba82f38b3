package main

import (
	"fmt"

	"github.com/aretw0/heartsquest/internal/cli"
	"github.com/aretw0/heartsquest/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphSession string

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the step graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the step graph. With --session the
visited, completed and current steps of that session are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := cli.NewLogger(opts.LogLevel, opts.LogFormat, "off")
		if err != nil {
			return err
		}
		engine, closeStore, err := cli.NewEngine(opts, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		var overlay *graph.GraphOverlay
		if graphSession != "" {
			p, err := engine.Load(cmd.Context(), graphSession)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", graphSession, err)
			}
			overlay = graph.OverlayFrom(p)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(engine.Table().Graph(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphSession, "session", "", "Highlight the progress of this session")
}
