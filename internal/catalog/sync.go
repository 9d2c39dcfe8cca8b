package catalog

import (
	"encoding/json"
	"log/slog"
	"path"
	"time"

	"github.com/acrsantana/project-guide/internal/checksum"
	"github.com/acrsantana/project-guide/internal/findings"
	"github.com/acrsantana/project-guide/internal/runstore"
)

// EventCallback is called after a sync-driven catalog change.
// kind is one of "updated", "removed".
type EventCallback func(kind string, runID string)

// Sync walks the runs directory and brings the catalog up to date:
//   - new/changed runs are parsed and upserted
//   - runs removed from disk are deleted from the catalog
//
// cb (if non-nil) is invoked once per mutated run.
func Sync(db *DB, files runstore.Provider, logger *slog.Logger, cb EventCallback) error {
	runs, err := files.Runs()
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(runs))
	for _, run := range runs {
		findingsPath := path.Join(run.ID, runstore.FindingsFile)
		if !files.Exists(findingsPath) {
			// A run directory with no findings yet; nothing to record.
			continue
		}
		disk[run.ID] = struct{}{}

		data, err := files.Read(findingsPath)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("run", run.ID), slog.String("error", err.Error()))
			continue
		}
		cs := checksum.Sum(data)
		if checksums[run.ID] == cs {
			continue
		}

		var f findings.Findings
		if err := json.Unmarshal(data, &f); err != nil {
			logger.Warn("sync: malformed findings", slog.String("run", run.ID), slog.String("error", err.Error()))
			continue
		}

		if err := db.UpsertRun(runRowFromDisk(run, &f, cs, files), findingRows(run.ID, &f)); err != nil {
			logger.Warn("sync: upsert failed", slog.String("run", run.ID), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: cataloged", slog.String("run", run.ID))
		if cb != nil {
			cb("updated", run.ID)
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := disk[id]; ok {
			continue
		}
		if err := db.DeleteRun(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("run", id), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("run", id))
		if cb != nil {
			cb("removed", id)
		}
	}

	return nil
}

// runRowFromDisk reconstructs a catalog row from run artifacts alone.
func runRowFromDisk(run runstore.RunInfo, f *findings.Findings, cs string, files runstore.Provider) RunRow {
	status := StatusPartial
	if files.Exists(path.Join(run.ID, runstore.GuideFile)) {
		status = StatusComplete
	}
	startedAt, err := time.Parse(runstore.RunTimestampLayout, run.ID)
	if err != nil {
		startedAt = run.ModTime
	}
	return RunRow{
		ID:          run.ID,
		Status:      status,
		Files:       len(f.Files),
		Directories: len(f.Directories),
		Checksum:    cs,
		StartedAt:   startedAt,
	}
}

// findingRows flattens a findings structure into searchable rows.
func findingRows(runID string, f *findings.Findings) []FindingRow {
	var rows []FindingRow
	if f.RootSummary != "" {
		rows = append(rows, FindingRow{RunID: runID, Kind: KindRoot, Path: ".", Summary: f.RootSummary})
	}
	for p, s := range f.Directories {
		rows = append(rows, FindingRow{RunID: runID, Kind: KindDirectory, Path: p, Summary: s})
	}
	for p, s := range f.Files {
		rows = append(rows, FindingRow{RunID: runID, Kind: KindFile, Path: p, Summary: s})
	}
	return rows
}
