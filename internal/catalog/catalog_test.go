package catalog

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/acrsantana/project-guide/internal/apperr"
	"github.com/acrsantana/project-guide/internal/runstore"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "guide-catalog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartAndFinishRun(t *testing.T) {
	db := testDB(t)
	if err := db.StartRun("20250101_120000", "/proj"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	r, err := db.GetRun("20250101_120000")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Status != StatusRunning || r.ProjectDir != "/proj" {
		t.Errorf("row = %+v", r)
	}
	if !r.FinishedAt.IsZero() {
		t.Error("running run should have zero FinishedAt")
	}

	if err := db.FinishRun("20250101_120000", StatusComplete, 5, 3, "abc"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	r, _ = db.GetRun("20250101_120000")
	if r.Status != StatusComplete || r.Files != 5 || r.Directories != 3 || r.Checksum != "abc" {
		t.Errorf("row = %+v", r)
	}
	if r.FinishedAt.IsZero() {
		t.Error("finished run should have FinishedAt set")
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetRun("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := testDB(t)
	_ = db.StartRun("20250101_120000", "/a")
	_ = db.StartRun("20250102_120000", "/b")

	runs, err := db.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "20250102_120000" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestUpsertRunPreservesProjectDir(t *testing.T) {
	db := testDB(t)
	_ = db.StartRun("run1", "/proj")

	// Disk reconstruction does not know the project dir.
	err := db.UpsertRun(RunRow{ID: "run1", Status: StatusComplete, Checksum: "cs", StartedAt: time.Now()}, nil)
	if err != nil {
		t.Fatalf("UpsertRun: %v", err)
	}
	r, _ := db.GetRun("run1")
	if r.ProjectDir != "/proj" {
		t.Errorf("project dir = %q, want preserved", r.ProjectDir)
	}
	if r.Status != StatusComplete {
		t.Errorf("status = %q", r.Status)
	}
}

func TestDeleteRun(t *testing.T) {
	db := testDB(t)
	_ = db.StartRun("run1", "/a")
	_ = db.UpsertRun(RunRow{ID: "run1", Status: StatusPartial, StartedAt: time.Now()},
		[]FindingRow{{RunID: "run1", Kind: KindFile, Path: "a.py", Summary: "x"}})

	if err := db.DeleteRun("run1"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := db.GetRun("run1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertRun(RunRow{ID: "run1", Status: StatusComplete, StartedAt: time.Now()}, []FindingRow{
		{RunID: "run1", Kind: KindFile, Path: "auth/login.py", Summary: "handles session tokens"},
		{RunID: "run1", Kind: KindDirectory, Path: "auth", Summary: "authentication layer"},
	})

	hits, err := db.Search("session", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Path != "auth/login.py" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSyncFromDisk(t *testing.T) {
	db := testDB(t)
	files, err := runstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	findingsJSON := []byte(`{"root_summary":"overview","directories":{".":"root"},"files":{"a.py":"entry","b.py":"helper"}}`)
	_ = files.Write("20250101_120000/"+runstore.FindingsFile, findingsJSON)
	_ = files.Write("20250102_120000/"+runstore.FindingsFile, findingsJSON)
	_ = files.Write("20250102_120000/"+runstore.GuideFile, []byte("# Guide"))

	var updated []string
	err = Sync(db, files, testLogger(), func(kind, runID string) {
		if kind == "updated" {
			updated = append(updated, runID)
		}
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(updated) != 2 {
		t.Errorf("updated = %v", updated)
	}

	r, err := db.GetRun("20250101_120000")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Status != StatusPartial || r.Files != 2 || r.Directories != 1 {
		t.Errorf("row = %+v", r)
	}
	r, _ = db.GetRun("20250102_120000")
	if r.Status != StatusComplete {
		t.Errorf("run with guide should be complete, got %q", r.Status)
	}

	// Unchanged runs are not re-upserted.
	calls := 0
	_ = Sync(db, files, testLogger(), func(kind, runID string) { calls++ })
	if calls != 0 {
		t.Errorf("second sync mutated %d runs, want 0", calls)
	}
}

func TestSyncRemovesStaleRuns(t *testing.T) {
	db := testDB(t)
	files, err := runstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = db.UpsertRun(RunRow{ID: "gone", Status: StatusComplete, Checksum: "x", StartedAt: time.Now()}, nil)

	var removed []string
	if err := Sync(db, files, testLogger(), func(kind, runID string) {
		if kind == "removed" {
			removed = append(removed, runID)
		}
	}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(removed) != 1 || removed[0] != "gone" {
		t.Errorf("removed = %v", removed)
	}
	if _, err := db.GetRun("gone"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale run should be deleted, err = %v", err)
	}
}
