// Package analysis implements the two-phase project analysis pipeline:
// collect summaries for every non-excluded file and directory, then
// synthesize them into a single developer guide.
//
// Execution is strictly sequential. The findings store's read-modify-write
// updates are not safe for concurrent callers, and the pipeline is the only
// writer within its run directory.
package analysis

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/acrsantana/project-guide/internal/findings"
	"github.com/acrsantana/project-guide/internal/runstore"
)

// RunContext carries everything one analysis run owns: its identity, the
// project under analysis, and handles to the run's findings store and
// transcript. It is created once per invocation and passed explicitly;
// nothing about a run lives in package-level state.
type RunContext struct {
	ID         string
	ProjectDir string // absolute
	Files      runstore.Provider
	Store      *findings.Store
	Transcript *findings.Transcript
	Logger     *slog.Logger
}

// NewRunContext creates a run rooted in a fresh timestamped directory under
// the runs root and initializes its findings store on disk.
func NewRunContext(projectDir string, files runstore.Provider, logger *slog.Logger) (*RunContext, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("analysis: resolve project dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("analysis: stat project dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analysis: project path is not a directory: %s", abs)
	}

	id := time.Now().Format(runstore.RunTimestampLayout)
	rc := &RunContext{
		ID:         id,
		ProjectDir: abs,
		Files:      files,
		Store:      findings.NewStore(files, id),
		Transcript: findings.NewTranscript(files, id),
		Logger:     logger.With(slog.String("run", id)),
	}
	if err := rc.Store.Init(); err != nil {
		return nil, fmt.Errorf("analysis: init findings store: %w", err)
	}

	rc.Logger.Info("run created",
		slog.String("project_dir", abs),
		slog.String("run_dir", filepath.Join(files.Root(), id)))
	return rc, nil
}

// GuidePath returns the run-relative path of the guide deliverable.
func (rc *RunContext) GuidePath() string {
	return path.Join(rc.ID, runstore.GuideFile)
}

// relKey returns the project-relative, slash-normalized form of abs, the
// form used for filtering, store keys, and transcript tags. The project
// root itself maps to ".".
func (rc *RunContext) relKey(abs string) string {
	rel, err := filepath.Rel(rc.ProjectDir, abs)
	if err != nil {
		return findings.Key(abs)
	}
	return findings.Key(rel)
}
