package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tenvctl/internal/mcpserver"
)

var serveListen string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tenvctl over the Model Context Protocol",
		Long: `Starts an MCP server exposing tenvctl's environments as tools so AI
assistants and editor integrations can list, validate and run them.

By default the server speaks the MCP stdio transport, suitable for
configuration in an assistant's MCP settings. With --listen it serves
the SSE transport on the given address instead:

  tenvctl serve
  tenvctl serve --listen localhost:8099`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&serveListen, "listen", "", "Serve MCP over SSE on this address (host:port) instead of stdio")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := mcpserver.New(rootConfigPath, rootCmd.Version)
	if serveListen != "" {
		return server.ServeSSE(ctx, serveListen)
	}
	return server.ServeStdio(ctx)
}
