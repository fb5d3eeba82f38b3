package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/heartsquest/internal/cli"
	"github.com/aretw0/heartsquest/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpTransport string
	mcpPort      int
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the quest as an MCP Server, so AI agents can play sessions through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := cli.NewLogger(opts.LogLevel, opts.LogFormat, "info")
		if err != nil {
			return err
		}
		engine, closeStore, err := cli.NewEngine(opts, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		defer engine.Shutdown(cmd.Context())

		srv := mcp.NewServer(engine, logger)

		switch mcpTransport {
		case "stdio":
			// Logs must not corrupt JSON-RPC on Stdout.
			log.SetOutput(os.Stderr)
			logger.Info("Starting MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("Starting MCP Server (SSE)", "port", mcpPort)
			if err := srv.ServeSSE(ctx, mcpPort); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", mcpTransport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().IntVar(&mcpPort, "port", 8080, "Port to listen on (only for SSE)")
}
