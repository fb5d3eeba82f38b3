package main

import (
	"os"

	"github.com/aretw0/heartsquest/internal/cli"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [session-id]",
	Short: "Play the quest in the terminal",
	Long: `Plays a session in the terminal. Sessions are saved after every step and
resumed by the next play with the same id.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			opts.SessionID = args[0]
		}
		return cli.RunSession(opts, cli.Terminal{
			In:    os.Stdin,
			Out:   os.Stdout,
			TTY:   cli.IsTerminal(os.Stdin) && cli.IsTerminal(os.Stdout),
			Width: cli.TerminalWidth(os.Stdout),
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolVar(&opts.Headless, "headless", false, "Plain screens without banner or markdown styling")
	playCmd.Flags().BoolVar(&opts.JSON, "json", false, "Run in JSON mode (one view per output line, intents or commands per input line)")
	playCmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "Discard the saved session and start over")

	// Playing is the default when no command is given.
	rootCmd.Args = playCmd.Args
	rootCmd.RunE = playCmd.RunE
	rootCmd.Flags().AddFlagSet(playCmd.Flags())
}
