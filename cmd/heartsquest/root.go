package main

import (
	"fmt"
	"os"

	"github.com/aretw0/heartsquest/internal/cli"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/spf13/cobra"
)

// opts is filled by the persistent flags of rootCmd.
var opts cli.Options

var rootCmd = &cobra.Command{
	Use:   "heartsquest",
	Short: "Hearts Quest is a little scavenger hunt through shared memories",
	Long: `Hearts Quest plays a map of trivia questions and mini-games in the terminal,
or serves it to rich clients over HTTP, SSE and MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts.Seeded = cmd.Flags().Changed("seed")
		return opts.Validate()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.Content, "content", "", "YAML content table (overrides --variant)")
	flags.StringVar(&opts.Variant, "variant", content.DefaultVariant, "Embedded content table: map or linear")
	flags.Uint64Var(&opts.Seed, "seed", 0, "Seed for mini-game randomness (reproducible sessions)")
	flags.StringVar(&opts.SessionsDir, "sessions-dir", "", "Directory of the file session store (default .heartsquest/sessions)")
	flags.StringVar(&opts.RedisAddr, "redis-addr", "", "Keep sessions in Redis at this address instead of files")
	flags.DurationVar(&opts.RedisTTL, "redis-ttl", 0, "Expire Redis sessions idle for this long (0 keeps them)")
	flags.StringVar(&opts.EncryptionKey, "encryption-key", os.Getenv("HEARTSQUEST_ENCRYPTION_KEY"), "Passphrase sealing sessions at rest (default $HEARTSQUEST_ENCRYPTION_KEY)")
	flags.BoolVar(&opts.RedactAnswers, "redact-answers", false, "Never persist the typed trivia answer")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error or off")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "Log format: text or json")
}
