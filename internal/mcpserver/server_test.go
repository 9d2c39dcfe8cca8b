package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/acrsantana/project-guide/internal/catalog"
	"github.com/acrsantana/project-guide/internal/runstore"
	"github.com/acrsantana/project-guide/internal/testutil"
)

func testServer(t *testing.T) (*Server, runstore.Provider, *catalog.DB) {
	t.Helper()
	db := testutil.TestCatalog(t)
	_, files := testutil.TestRuns(t)
	srv := New(files, db)
	return srv, files, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_runs":
		result, err = srv.listRuns(ctx, req)
	case "get_guide":
		result, err = srv.getGuide(ctx, req)
	case "get_summary":
		result, err = srv.getSummary(ctx, req)
	case "search_findings":
		result, err = srv.searchFindings(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seedRun(t *testing.T, files runstore.Provider, db *catalog.DB, id string) {
	t.Helper()
	_ = files.Write(id+"/"+runstore.FindingsFile,
		[]byte(`{"root_summary":"a small python service","directories":{"src":"source code"},"files":{"src/main.py":"entry point"}}`))
	_ = files.Write(id+"/"+runstore.GuideFile, []byte("# Developer Guide\n\nExecutive Summary"))
	err := db.UpsertRun(
		catalog.RunRow{ID: id, ProjectDir: "/proj", Status: catalog.StatusComplete, Files: 1, Directories: 1, StartedAt: time.Now()},
		[]catalog.FindingRow{
			{RunID: id, Kind: catalog.KindFile, Path: "src/main.py", Summary: "entry point"},
		})
	if err != nil {
		t.Fatal(err)
	}
}

func TestListRuns(t *testing.T) {
	srv, files, db := testServer(t)

	r := callTool(t, srv, "list_runs", map[string]interface{}{})
	if resultText(r) != "no runs recorded" {
		t.Errorf("empty list = %q", resultText(r))
	}

	seedRun(t, files, db, "20250101_090000")
	r = callTool(t, srv, "list_runs", map[string]interface{}{})
	if !strings.Contains(resultText(r), "20250101_090000") {
		t.Errorf("list = %q", resultText(r))
	}
}

func TestGetGuide(t *testing.T) {
	srv, files, db := testServer(t)
	seedRun(t, files, db, "run1")

	r := callTool(t, srv, "get_guide", map[string]interface{}{"run": "run1"})
	if !strings.HasPrefix(resultText(r), "# Developer Guide") {
		t.Errorf("guide = %q", resultText(r))
	}

	r = callTool(t, srv, "get_guide", map[string]interface{}{"run": "missing"})
	if !r.IsError {
		t.Error("expected error for missing guide")
	}
}

func TestGetSummary(t *testing.T) {
	srv, files, db := testServer(t)
	seedRun(t, files, db, "run1")

	r := callTool(t, srv, "get_summary", map[string]interface{}{"run": "run1", "path": "src/main.py"})
	if resultText(r) != "entry point" {
		t.Errorf("file summary = %q", resultText(r))
	}

	r = callTool(t, srv, "get_summary", map[string]interface{}{"run": "run1", "path": "src"})
	if resultText(r) != "source code" {
		t.Errorf("dir summary = %q", resultText(r))
	}

	r = callTool(t, srv, "get_summary", map[string]interface{}{"run": "run1", "path": "."})
	if resultText(r) != "a small python service" {
		t.Errorf("root summary = %q", resultText(r))
	}

	r = callTool(t, srv, "get_summary", map[string]interface{}{"run": "run1", "path": "nope.py"})
	if !r.IsError {
		t.Error("expected error for unknown path")
	}
}

func TestSearchFindings(t *testing.T) {
	srv, files, db := testServer(t)
	seedRun(t, files, db, "run1")

	r := callTool(t, srv, "search_findings", map[string]interface{}{"query": "entry"})
	if !strings.Contains(resultText(r), "src/main.py") {
		t.Errorf("search = %q", resultText(r))
	}

	r = callTool(t, srv, "search_findings", map[string]interface{}{"query": "zzzqqq"})
	if resultText(r) != "no matches" {
		t.Errorf("no-match search = %q", resultText(r))
	}
}
