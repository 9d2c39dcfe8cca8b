// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes analysis runs and guides for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/acrsantana/project-guide/internal/catalog"
	"github.com/acrsantana/project-guide/internal/findings"
	"github.com/acrsantana/project-guide/internal/runstore"
)

// Server wraps the MCP server with the run inspection tools.
type Server struct {
	mcp   *server.MCPServer
	files runstore.Provider
	db    catalog.RunCatalog
}

// New creates a new MCP server with all tools registered.
func New(files runstore.Provider, db catalog.RunCatalog) *Server {
	s := &Server{files: files, db: db}

	s.mcp = server.NewMCPServer(
		"project-guide",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List all recorded analysis runs, newest first."),
	), s.listRuns)

	s.mcp.AddTool(mcp.NewTool("get_guide",
		mcp.WithDescription("Read the generated developer guide for a run. "+
			"Guides follow the layout described by the project-guide://guide-format resource."),
		mcp.WithString("run", mcp.Required(), mcp.Description("Run identifier (e.g. 20250130_142505)")),
	), s.getGuide)

	s.mcp.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Read the recorded summary of one file or directory from a run. "+
			"Pass '.' to get the project root summary."),
		mcp.WithString("run", mcp.Required(), mcp.Description("Run identifier")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Project-relative path of the file or directory")),
	), s.getSummary)

	s.mcp.AddTool(mcp.NewTool("search_findings",
		mcp.WithDescription("Full-text search through recorded file and directory summaries across runs."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchFindings)

	// Resource: guide layout contract.
	s.mcp.AddResource(
		mcp.NewResource("project-guide://guide-format", "Guide Format",
			mcp.WithResourceDescription("Section layout every generated developer guide follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.db.ListRuns()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no runs recorded"), nil
	}
	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%d files, %d directories", r.ID, r.Status, r.Files, r.Directories))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, err := req.RequireString("run")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.files.Read(path.Join(run, runstore.GuideFile))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no guide for run: %s", run)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, err := req.RequireString("run")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := findings.NewStore(s.files, run).Read()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no findings for run: %s", run)), nil
	}
	if p == "." && f.RootSummary != "" {
		return mcp.NewToolResultText(f.RootSummary), nil
	}
	if summary, ok := f.Files[p]; ok {
		return mcp.NewToolResultText(summary), nil
	}
	if summary, ok := f.Directories[p]; ok {
		return mcp.NewToolResultText(summary), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("no summary recorded for: %s", p)), nil
}

func (s *Server) searchFindings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readGuideFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "project-guide://guide-format",
			MIMEType: "text/markdown",
			Text:     GuideFormatContract,
		},
	}, nil
}
