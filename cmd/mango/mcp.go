package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slipstream/mango/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes graph editing as MCP tools (list_types, get_graph, add_node,
connect, disconnect, pull, undo, redo, save...).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		graphName, _ := cmd.Flags().GetString("graph")
		// Stdout carries JSON-RPC, logs stay on stderr.
		logger := opts.Logger()

		storage, err := opts.OpenStorage()
		if err != nil {
			return err
		}
		defer storage.Close()
		sessions, err := opts.NewSessions(storage, nil)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(sessions, mcp.WithDefaultGraph(graphName), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting Mango MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ServeSSE(ctx, fmt.Sprintf(":%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("graph", mcp.DefaultGraph, "Graph edited when a tool call names none")
}
