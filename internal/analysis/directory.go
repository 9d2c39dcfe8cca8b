package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/acrsantana/project-guide/internal/oracle"
	"github.com/acrsantana/project-guide/internal/pathfilter"
)

// DirectoryAnalyzer composes the summaries of a directory's immediate files
// into a directory-level summary. Subdirectories are not descended into
// here; the project walk visits each directory separately.
type DirectoryAnalyzer struct {
	rc     *RunContext
	orc    oracle.Oracle
	filter *pathfilter.Filter
	files  *FileAnalyzer
}

// NewDirectoryAnalyzer creates a directory analyzer for the run.
func NewDirectoryAnalyzer(rc *RunContext, orc oracle.Oracle, filter *pathfilter.Filter) *DirectoryAnalyzer {
	return &DirectoryAnalyzer{
		rc:     rc,
		orc:    orc,
		filter: filter,
		files:  NewFileAnalyzer(rc, orc),
	}
}

// Analyze summarizes every qualifying file directly inside abs, then asks
// the oracle for a synthesis of the directory's collective purpose.
//
// Excluded directories and directories with no qualifying files produce no
// entries. A directory whose every file fails analysis also produces no
// entry, but that case is logged as an error rather than silently skipped.
// A single failing file only narrows the directory summary.
func (d *DirectoryAnalyzer) Analyze(ctx context.Context, abs string) error {
	rel := d.rc.relKey(abs)
	if d.filter.IsExcluded(rel) {
		return nil
	}
	d.rc.Logger.Info("analyzing directory", slog.String("path", rel))

	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("analysis: list %s: %w", rel, err)
	}

	qualifying := 0
	var parts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fileAbs := filepath.Join(abs, e.Name())
		if d.filter.IsExcluded(d.rc.relKey(fileAbs)) {
			continue
		}
		qualifying++

		summary, err := d.files.Analyze(ctx, fileAbs)
		if err != nil {
			d.rc.Logger.Error("file analysis failed, skipping",
				slog.String("path", d.rc.relKey(fileAbs)),
				slog.String("error", err.Error()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", e.Name(), summary))
	}

	if qualifying == 0 {
		// Nothing to summarize here; not an error.
		return nil
	}
	if len(parts) == 0 {
		d.rc.Logger.Error("directory produced no file summaries",
			slog.String("path", rel),
			slog.Int("files", qualifying))
		return nil
	}

	summary, err := d.orc.Summarize(ctx, dirRequest(rel, strings.Join(parts, "")))
	if err != nil {
		return fmt.Errorf("analysis: summarize directory %s: %w", rel, err)
	}

	if err := d.rc.Store.SetDirectory(rel, summary); err != nil {
		return err
	}
	if err := d.rc.Transcript.AppendDirectory(rel, summary); err != nil {
		return err
	}
	d.rc.Logger.Debug("directory analysis complete", slog.String("path", rel))
	return nil
}
