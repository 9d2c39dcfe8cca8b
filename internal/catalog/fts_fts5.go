//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS findings_fts USING fts5(
			run_id UNINDEXED,
			kind UNINDEXED,
			path,
			summary,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReplaceRun(tx *sql.Tx, runID string, rows []FindingRow) error {
	if _, err := tx.Exec(`DELETE FROM findings_fts WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("catalog: clear fts: %w", err)
	}
	for _, f := range rows {
		_, err := tx.Exec(`INSERT INTO findings_fts (run_id, kind, path, summary) VALUES (?, ?, ?, ?)`,
			runID, f.Kind, f.Path, f.Summary)
		if err != nil {
			return fmt.Errorf("catalog: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDeleteRun(tx *sql.Tx, runID string) {
	_, _ = tx.Exec(`DELETE FROM findings_fts WHERE run_id = ?`, runID)
}

// Search performs an FTS5 full-text search over findings and returns
// matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT run_id,
		       kind,
		       path,
		       snippet(findings_fts, 3, '<b>', '</b>', '...', 64)
		FROM findings_fts
		WHERE findings_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.RunID, &h.Kind, &h.Path, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
