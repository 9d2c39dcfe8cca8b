// Package catalog provides the SQLite registry of analysis runs with
// optional FTS5 full-text search over their findings.
//
// The catalog is derived state: the runs directory on disk remains the
// source of truth, and Sync can rebuild the catalog from it at any time.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	project_dir TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'running',
	files       INTEGER NOT NULL DEFAULT 0,
	directories INTEGER NOT NULL DEFAULT 0,
	checksum    TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS findings (
	run_id  TEXT NOT NULL,
	kind    TEXT NOT NULL,
	path    TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	UNIQUE(run_id, kind, path)
);

CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite catalog and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RunCatalog defines the catalog operations. Consumers should depend on
// this interface rather than the concrete *DB type to facilitate testing.
type RunCatalog interface {
	StartRun(id, projectDir string) error
	FinishRun(id, status string, files, directories int, checksum string) error
	UpsertRun(row RunRow, rows []FindingRow) error
	DeleteRun(id string) error
	GetRun(id string) (*RunRow, error)
	ListRuns() ([]RunRow, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchHit, error)
	Close() error
}

// Verify *DB satisfies RunCatalog at compile time.
var _ RunCatalog = (*DB)(nil)
