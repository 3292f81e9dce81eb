// Package mcpserver exposes the mentor analysis pipeline as Model Context
// Protocol tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/service/analysis"
)

// Server wraps the MCP server and registers the mentor tools.
type Server struct {
	server  *mcp.Server
	svc     *analysis.Service
	version string
}

// NewServer creates a new MCP server with all mentor tools registered. A nil
// service analyzes with the default configuration and no cache.
func NewServer(version string, svc *analysis.Service) *Server {
	if version == "" {
		version = "dev"
	}
	if svc == nil {
		svc = analysis.New(analysis.WithVersion(version))
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mentor",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, svc: svc, version: version}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t. Run is the stdio shorthand.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_source",
		Description: describeAnalyzeSource(),
	}, s.handleAnalyzeSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_paths",
		Description: describeAnalyzePaths(),
	}, s.handleAnalyzePaths)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_languages",
		Description: describeListLanguages(),
	}, s.handleListLanguages)
}
