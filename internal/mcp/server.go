package mcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/jfryot/internal/export"
	"github.com/vadimtrunov/jfryot/internal/tracker/ryot"
)

// Deps holds what the tool handlers need.
type Deps struct {
	Exporter *export.Exporter
	// MovieLibraryID is resolved per call so a server started without one
	// still serves export_shows.
	MovieLibraryID func() (string, error)
}

// Server wraps an MCP SDK server with the export tools.
type Server struct {
	server *mcpsdk.Server
	deps   Deps
	logger *slog.Logger
}

// NewServer creates an MCP server with the export tools registered.
func NewServer(deps Deps, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "jfryot",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, deps: deps, logger: logger}
	srv.server.AddTool(exportTool(export.OpShows, "Export every TV show of the Jellyfin TV library with its watched episodes as a Ryot import JSON array."), srv.handleShows)
	srv.server.AddTool(exportTool(export.OpMovies, "Export every watched movie of the Jellyfin movie library as a Ryot import JSON array."), srv.handleMovies)
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

// ToolName is the MCP tool name of an export operation.
func ToolName(op export.Operation) string {
	return "export_" + string(op)
}

func exportTool(op export.Operation, desc string) *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        ToolName(op),
		Description: desc,
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (s *Server) handleShows(ctx context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	items, err := s.deps.Exporter.Shows(ctx)
	if err != nil {
		s.logger.Error("export shows failed", slog.String("error", err.Error()))
		return toolError(fmt.Sprintf("export shows failed: %v", err)), nil
	}
	return toolItems(items), nil
}

func (s *Server) handleMovies(ctx context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.MovieLibraryID == nil {
		return toolError("no movie library configured"), nil
	}
	libraryID, err := s.deps.MovieLibraryID()
	if err != nil {
		return toolError(err.Error()), nil
	}

	items, err := s.deps.Exporter.Movies(ctx, libraryID)
	if err != nil {
		s.logger.Error("export movies failed", slog.String("error", err.Error()))
		return toolError(fmt.Sprintf("export movies failed: %v", err)), nil
	}
	return toolItems(items), nil
}

// toolItems returns the items as the same JSON array the CLI prints.
func toolItems(items []ryot.Item) *mcpsdk.CallToolResult {
	var buf bytes.Buffer
	if err := ryot.Encode(&buf, items); err != nil {
		return toolError(err.Error())
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: strings.TrimSuffix(buf.String(), "\n")}},
	}
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}
