package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/acrsantana/project-guide/internal/oracle"
	"github.com/acrsantana/project-guide/internal/pathfilter"
)

// ProjectAnalyzer orchestrates the collection phase: one holistic root
// summary, then a depth-first walk analyzing every non-excluded directory.
type ProjectAnalyzer struct {
	rc     *RunContext
	orc    oracle.Oracle
	filter *pathfilter.Filter
	dirs   *DirectoryAnalyzer
}

// NewProjectAnalyzer creates the orchestrator for one run.
func NewProjectAnalyzer(rc *RunContext, orc oracle.Oracle, filter *pathfilter.Filter) *ProjectAnalyzer {
	return &ProjectAnalyzer{
		rc:     rc,
		orc:    orc,
		filter: filter,
		dirs:   NewDirectoryAnalyzer(rc, orc, filter),
	}
}

// Run performs the collection phase. A root summary failure is fatal; a
// failure in any single directory is logged and the walk continues, leaving
// best-effort coverage in the findings store.
//
// The project root is visited twice on purpose: once holistically via the
// root summary, and once as an ordinary directory so its own files are
// analyzed like any others.
func (p *ProjectAnalyzer) Run(ctx context.Context) error {
	p.rc.Logger.Info("starting project analysis", slog.String("project_dir", p.rc.ProjectDir))

	if err := p.analyzeRoot(ctx); err != nil {
		return err
	}

	err := filepath.WalkDir(p.rc.ProjectDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			p.rc.Logger.Warn("walk error, skipping",
				slog.String("path", path),
				slog.String("error", walkErr.Error()))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		// Prune excluded subtrees by directory name; the full-path check
		// inside the directory analyzer still applies to what remains.
		if path != p.rc.ProjectDir && p.filter.IsExcluded(d.Name()) {
			return filepath.SkipDir
		}
		if aerr := p.dirs.Analyze(ctx, path); aerr != nil {
			p.rc.Logger.Error("directory analysis failed, continuing",
				slog.String("path", p.rc.relKey(path)),
				slog.String("error", aerr.Error()))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("analysis: walk project: %w", err)
	}

	p.rc.Logger.Info("project analysis complete")
	return nil
}

// analyzeRoot asks the oracle for the project's dominant language and
// purpose, seeded with the full non-excluded path listing.
func (p *ProjectAnalyzer) analyzeRoot(ctx context.Context) error {
	p.rc.Logger.Info("analyzing project root")

	listing, err := p.listProject()
	if err != nil {
		return fmt.Errorf("analysis: list project: %w", err)
	}

	summary, err := p.orc.Summarize(ctx, rootRequest(p.rc.ProjectDir, listing))
	if err != nil {
		return fmt.Errorf("analysis: root summary: %w", err)
	}

	if err := p.rc.Store.SetRootSummary(summary); err != nil {
		return err
	}
	if err := p.rc.Transcript.AppendOverview(summary); err != nil {
		return err
	}
	p.rc.Logger.Info("root analysis complete")
	return nil
}

// listProject returns the newline-joined, project-relative listing of every
// non-excluded file and directory under the project root.
func (p *ProjectAnalyzer) listProject() (string, error) {
	var paths []string
	err := filepath.WalkDir(p.rc.ProjectDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == p.rc.ProjectDir {
			return nil
		}
		rel := p.rc.relKey(path)
		if p.filter.IsExcluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(paths, "\n"), nil
}
