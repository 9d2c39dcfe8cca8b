package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acrsantana/project-guide/internal/oracle"
	"github.com/acrsantana/project-guide/internal/pathfilter"
	"github.com/acrsantana/project-guide/internal/runstore"
)

// fakeOracle answers by request kind and can be told to fail selectively.
type fakeOracle struct {
	calls []oracle.Request
	fail  func(req oracle.Request) bool
}

func (f *fakeOracle) Summarize(_ context.Context, req oracle.Request) (string, error) {
	f.calls = append(f.calls, req)
	if f.fail != nil && f.fail(req) {
		return "", errors.New("oracle unavailable")
	}
	switch req.System {
	case rootSystem:
		return "root summary", nil
	case fileSystem:
		return "file summary", nil
	case dirSystem:
		return "directory summary", nil
	case guideSystem:
		return "# Developer Guide", nil
	}
	return "unexpected", nil
}

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixtureProject builds a small tree with excluded, empty, unreadable and
// ordinary entries.
func fixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "a.py", []byte("print('root file')"))
	writeFile(t, dir, "src/main.py", []byte("def main(): pass"))
	writeFile(t, dir, "src/util.py", []byte("def util(): pass"))
	writeFile(t, dir, "docs/readme.md", []byte("# readme"))
	writeFile(t, dir, "node_modules/x.py", []byte("ignored"))
	writeFile(t, dir, "mixed/good.py", []byte("ok"))
	writeFile(t, dir, "mixed/broken.bin", []byte{0xff, 0xfe, 0x00, 0x81})
	writeFile(t, dir, "allfail/only.bin", []byte{0xff, 0xfe, 0x00, 0x81})
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func newTestRun(t *testing.T, projectDir string) *RunContext {
	t.Helper()
	files, err := runstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rc, err := NewRunContext(projectDir, files, testLogger())
	if err != nil {
		t.Fatalf("NewRunContext: %v", err)
	}
	return rc
}

func TestFullCollection(t *testing.T) {
	project := fixtureProject(t)
	rc := newTestRun(t, project)
	orc := &fakeOracle{}
	pa := NewProjectAnalyzer(rc, orc, pathfilter.Default())

	if err := pa.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := rc.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if f.RootSummary != "root summary" {
		t.Errorf("root summary = %q", f.RootSummary)
	}

	wantFiles := []string{"a.py", "src/main.py", "src/util.py", "docs/readme.md", "mixed/good.py"}
	if len(f.Files) != len(wantFiles) {
		t.Errorf("files = %d entries %v, want %d", len(f.Files), f.Files, len(wantFiles))
	}
	for _, p := range wantFiles {
		if _, ok := f.Files[p]; !ok {
			t.Errorf("missing file entry %q", p)
		}
	}

	wantDirs := []string{".", "src", "docs", "mixed"}
	if len(f.Directories) != len(wantDirs) {
		t.Errorf("directories = %d entries %v, want %d", len(f.Directories), f.Directories, len(wantDirs))
	}
	for _, p := range wantDirs {
		if _, ok := f.Directories[p]; !ok {
			t.Errorf("missing directory entry %q", p)
		}
	}

	// Excluded subtree leaves no trace.
	for p := range f.Files {
		if strings.Contains(p, "node_modules") {
			t.Errorf("excluded path leaked into files: %q", p)
		}
	}

	// Root is represented twice on purpose: holistic summary plus the "."
	// directory entry for its own files.
	if _, ok := f.Directories["."]; !ok || f.RootSummary == "" {
		t.Error("root summary and \".\" directory entry must coexist")
	}

	// A directory whose every file fails produces no entry.
	if _, ok := f.Directories["allfail"]; ok {
		t.Error("allfail should have no directory entry")
	}
	// Empty directories are silently absent.
	if _, ok := f.Directories["empty"]; ok {
		t.Error("empty should have no directory entry")
	}
}

func TestUnreadableFileIsSkippedNotFatal(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "good.py", []byte("ok"))
	writeFile(t, project, "broken.bin", []byte{0xff, 0xfe, 0x00, 0x81})

	rc := newTestRun(t, project)
	orc := &fakeOracle{}
	pa := NewProjectAnalyzer(rc, orc, pathfilter.Default())

	if err := pa.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	f, _ := rc.Store.Read()
	if len(f.Files) != 1 {
		t.Errorf("files = %v, want only the readable one", f.Files)
	}
	if _, ok := f.Directories["."]; !ok {
		t.Error("directory entry should still be composed from the surviving summary")
	}
}

func TestRootFailureIsFatal(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "a.py", []byte("x"))

	rc := newTestRun(t, project)
	orc := &fakeOracle{fail: func(req oracle.Request) bool { return req.System == rootSystem }}
	pa := NewProjectAnalyzer(rc, orc, pathfilter.Default())

	if err := pa.Run(context.Background()); err == nil {
		t.Fatal("root summary failure should abort the run")
	}
}

func TestDirectoryFailureContinuesWalk(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "one/a.py", []byte("x"))
	writeFile(t, project, "two/b.py", []byte("y"))

	rc := newTestRun(t, project)
	orc := &fakeOracle{fail: func(req oracle.Request) bool {
		return req.System == dirSystem && strings.Contains(req.Prompt, "Analyze this directory: one")
	}}
	pa := NewProjectAnalyzer(rc, orc, pathfilter.Default())

	if err := pa.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	f, _ := rc.Store.Read()
	if _, ok := f.Directories["one"]; ok {
		t.Error("failed directory should have no entry")
	}
	if _, ok := f.Directories["two"]; !ok {
		t.Error("sibling directory should be unaffected")
	}
	// File summaries collected before the directory synthesis failed stay.
	if _, ok := f.Files["one/a.py"]; !ok {
		t.Error("file summary from the failed directory should persist")
	}
}

func TestRootListingExcludesPrunedSubtrees(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "a.py", []byte("x"))
	writeFile(t, project, "node_modules/dep/index.js", []byte("x"))

	rc := newTestRun(t, project)
	orc := &fakeOracle{}
	pa := NewProjectAnalyzer(rc, orc, pathfilter.Default())
	if err := pa.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var rootPrompt string
	for _, call := range orc.calls {
		if call.System == rootSystem {
			rootPrompt = call.Prompt
		}
	}
	if rootPrompt == "" {
		t.Fatal("no root request issued")
	}
	if !strings.Contains(rootPrompt, "a.py") {
		t.Error("listing should include a.py")
	}
	if strings.Contains(rootPrompt, "node_modules") {
		t.Error("listing should not include excluded paths")
	}
}

func TestSynthesizer(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "a.py", []byte("x"))

	rc := newTestRun(t, project)
	orc := &fakeOracle{}
	pa := NewProjectAnalyzer(rc, orc, pathfilter.Default())
	if err := pa.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	guide, err := NewSynthesizer(rc, orc).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if guide != "# Developer Guide" {
		t.Errorf("guide = %q", guide)
	}
	data, err := rc.Files.Read(rc.GuidePath())
	if err != nil {
		t.Fatalf("guide not persisted: %v", err)
	}
	if string(data) != guide {
		t.Error("persisted guide differs from returned text")
	}

	last := orc.calls[len(orc.calls)-1]
	if last.System != guideSystem {
		t.Fatalf("last call system = %q", last.System)
	}
	// Both the transcript and the structured findings feed synthesis.
	if !strings.Contains(last.Prompt, "Project Overview:") {
		t.Error("prompt should embed the transcript")
	}
	if !strings.Contains(last.Prompt, `"root_summary"`) {
		t.Error("prompt should embed the findings JSON")
	}
	for _, section := range []string{
		"1. Executive Summary", "2. Project Architecture", "3. Setup & Installation",
		"4. Code Organization", "5. Core Concepts", "6. Development Workflow",
		"7. API Reference", "8. Common Tasks",
	} {
		if !strings.Contains(last.Prompt, section) {
			t.Errorf("prompt missing section %q", section)
		}
	}
}

func TestSynthesizerFailureIsFatal(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "a.py", []byte("x"))

	rc := newTestRun(t, project)
	orc := &fakeOracle{}
	pa := NewProjectAnalyzer(rc, orc, pathfilter.Default())
	if err := pa.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	orc.fail = func(req oracle.Request) bool { return req.System == guideSystem }
	if _, err := NewSynthesizer(rc, orc).Generate(context.Background()); err == nil {
		t.Fatal("synthesis failure should be fatal")
	}
}
