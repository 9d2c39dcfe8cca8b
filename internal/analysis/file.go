package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/acrsantana/project-guide/internal/oracle"
)

// FileAnalyzer produces a structured summary for one file's content and
// records it in the run's findings store and transcript.
type FileAnalyzer struct {
	rc  *RunContext
	orc oracle.Oracle
}

// NewFileAnalyzer creates a file analyzer for the run.
func NewFileAnalyzer(rc *RunContext, orc oracle.Oracle) *FileAnalyzer {
	return &FileAnalyzer{rc: rc, orc: orc}
}

// Analyze reads the file at abs, asks the oracle for a summary, and persists
// it under the file's project-relative path. Errors here (unreadable file,
// oracle failure) are not fatal to the run; the caller logs them and treats
// the file as skipped. Re-analysis of the same path overwrites its entry.
func (a *FileAnalyzer) Analyze(ctx context.Context, abs string) (string, error) {
	rel := a.rc.relKey(abs)
	a.rc.Logger.Info("analyzing file", slog.String("path", rel))

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("analysis: read %s: %w", rel, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("analysis: read %s: not valid UTF-8 text", rel)
	}

	summary, err := a.orc.Summarize(ctx, fileRequest(rel, string(data)))
	if err != nil {
		return "", fmt.Errorf("analysis: summarize %s: %w", rel, err)
	}

	if err := a.rc.Store.SetFile(rel, summary); err != nil {
		return "", err
	}
	if err := a.rc.Transcript.AppendFile(rel, summary); err != nil {
		return "", err
	}
	a.rc.Logger.Debug("file analysis complete", slog.String("path", rel))
	return summary, nil
}
