// Package mcpserver exposes tenvctl over the Model Context Protocol so
// agents and editor integrations can list, validate and run test
// environments without shelling out to the CLI.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"tenvctl/pkg/logging"
)

// Server wraps the MCP server and the tenvctl tool handlers.
type Server struct {
	configPath string
	version    string

	mcp *server.MCPServer
	sse *server.SSEServer
}

// New creates the MCP server. configPath is the explicit --config value
// passed through to every tool invocation; empty uses the layered default
// lookup.
func New(configPath, version string) *Server {
	s := &Server{
		configPath: configPath,
		version:    version,
	}

	s.mcp = server.NewMCPServer(
		"tenvctl",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves the MCP protocol on stdin/stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	logging.Info("MCPServer", "serving MCP on stdio")
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// ServeSSE serves the MCP protocol over SSE on the given address
// (host:port) until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := fmt.Sprintf("http://%s", addr)
	s.sse = server.NewSSEServer(
		s.mcp,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
	)

	errChan := make(chan error, 1)
	go func() {
		logging.Info("MCPServer", "serving MCP over SSE at %s/sse", baseURL)
		errChan <- s.sse.Start(addr)
	}()

	select {
	case <-ctx.Done():
		logging.Info("MCPServer", "shutting down SSE server")
		return s.sse.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}
