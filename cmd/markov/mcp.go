package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aretw0/markov/internal/cli"
	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/pkg/adapters/mcp"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the scheme to AI agents as MCP tools (apply_scheme, step_word,
describe_scheme) and the markov://scheme resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		debug, _ := cmd.Flags().GetBool("debug")
		maxLimit, _ := cmd.Flags().GetInt("max-limit")

		// Stdout carries JSON-RPC, so logs always go to stderr.
		logger := logging.New(logging.LevelFor(debug))
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)

		engine, _, err := schemeFlags.Engine(cmd.Context())
		if err != nil {
			return err
		}
		srv := mcp.NewServer(engine, logger)
		srv.MaxStepLimit = maxLimit

		switch transport {
		case "stdio":
			logger.Info("Starting Markov MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			logger.Info("Starting Markov MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Int("max-limit", domain.DefaultMaxStepLimit, "Largest step limit apply_scheme accepts (0 removes the cap)")
}
