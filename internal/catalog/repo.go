package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/acrsantana/project-guide/internal/apperr"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
	// StatusPartial marks a run reconstructed from disk that has findings
	// but no guide deliverable yet.
	StatusPartial = "partial"
)

// Finding kinds.
const (
	KindRoot      = "root"
	KindFile      = "file"
	KindDirectory = "directory"
)

// RunRow represents a row in the runs table.
type RunRow struct {
	ID          string
	ProjectDir  string
	Status      string
	Files       int
	Directories int
	Checksum    string
	StartedAt   time.Time
	FinishedAt  time.Time // zero when the run has not finished
}

// FindingRow is one searchable finding belonging to a run.
type FindingRow struct {
	RunID   string
	Kind    string
	Path    string
	Summary string
}

// SearchHit is one full-text search result.
type SearchHit struct {
	RunID   string `json:"run_id"`
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Snippet string `json:"snippet"`
}

// StartRun records a newly created run in running state.
func (db *DB) StartRun(id, projectDir string) error {
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, project_dir, status)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_dir = excluded.project_dir,
			status      = excluded.status
	`, id, projectDir, StatusRunning)
	if err != nil {
		return fmt.Errorf("catalog: start run: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal status and result counts.
func (db *DB) FinishRun(id, status string, files, directories int, checksum string) error {
	_, err := db.conn.Exec(`
		UPDATE runs
		SET status = ?, files = ?, directories = ?, checksum = ?, finished_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, files, directories, checksum, id)
	if err != nil {
		return fmt.Errorf("catalog: finish run: %w", err)
	}
	return nil
}

// UpsertRun inserts or replaces a run row together with its findings and
// their FTS entries within a transaction. An empty ProjectDir preserves any
// previously recorded value (disk reconstruction does not know it).
func (db *DB) UpsertRun(row RunRow, rows []FindingRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO runs (id, project_dir, status, files, directories, checksum, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_dir = CASE WHEN excluded.project_dir = '' THEN runs.project_dir ELSE excluded.project_dir END,
			status      = excluded.status,
			files       = excluded.files,
			directories = excluded.directories,
			checksum    = excluded.checksum
	`, row.ID, row.ProjectDir, row.Status, row.Files, row.Directories, row.Checksum, row.StartedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert run: %w", err)
	}

	// Replace findings: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM findings WHERE run_id = ?`, row.ID); err != nil {
		return fmt.Errorf("catalog: clear findings: %w", err)
	}
	if len(rows) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO findings (run_id, kind, path, summary) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare finding insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range rows {
			if _, err := stmt.Exec(row.ID, f.Kind, f.Path, f.Summary); err != nil {
				return fmt.Errorf("catalog: insert finding: %w", err)
			}
		}
	}

	// FTS replace (no-op when FTS5 tag is absent).
	if err := ftsReplaceRun(tx, row.ID, rows); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRun removes a run, its findings, and its FTS entries.
func (db *DB) DeleteRun(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteRun(tx, id)
	_, _ = tx.Exec(`DELETE FROM findings WHERE run_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM runs WHERE id = ?`, id)

	return tx.Commit()
}

// GetRun returns one run by id, or apperr.ErrNotFound.
func (db *DB) GetRun(id string) (*RunRow, error) {
	row := db.conn.QueryRow(`
		SELECT id, project_dir, status, files, directories, checksum, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: run %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get run: %w", err)
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (db *DB) ListRuns() ([]RunRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, project_dir, status, files, directories, checksum, started_at, finished_at
		FROM runs ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// AllChecksums returns the stored findings checksum for every run.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM runs`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(s scannable) (*RunRow, error) {
	var r RunRow
	var finished sql.NullTime
	if err := s.Scan(&r.ID, &r.ProjectDir, &r.Status, &r.Files, &r.Directories, &r.Checksum, &r.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return &r, nil
}
