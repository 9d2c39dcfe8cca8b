// Package testutil provides shared test helpers for setting up runs directories and catalogs.
package testutil

import (
	"os"
	"testing"

	"github.com/acrsantana/project-guide/internal/catalog"
	"github.com/acrsantana/project-guide/internal/runstore"
)

// TestCatalog creates a temporary SQLite catalog that is automatically cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "guide-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRuns creates a temporary runs directory with a runstore.Provider.
func TestRuns(t *testing.T) (string, runstore.Provider) {
	t.Helper()
	runsDir := t.TempDir()
	files, err := runstore.NewFS(runsDir)
	if err != nil {
		t.Fatal(err)
	}
	return runsDir, files
}
