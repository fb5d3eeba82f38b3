package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/heartsquest"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of heartsquest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "heartsquest version %s\n", strings.TrimSpace(heartsquest.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
