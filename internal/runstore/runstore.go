// Package runstore defines the file-system abstraction for the runs directory.
//
// Every analysis run owns one timestamped subdirectory of the runs root and
// writes all of its artifacts (findings.json, transcript.txt, guide.md)
// through a Provider.
package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Standard artifact names within a run directory.
const (
	FindingsFile   = "findings.json"
	TranscriptFile = "transcript.txt"
	GuideFile      = "guide.md"
)

// RunTimestampLayout names run directories, e.g. 20250102_150405.
const RunTimestampLayout = "20060102_150405"

// RunInfo describes one run directory under the runs root.
type RunInfo struct {
	ID      string
	ModTime time.Time
}

// Provider is the interface for run artifact file operations.
// All paths are relative to the runs root (e.g. "20250102_150405/guide.md").
type Provider interface {
	// Runs returns one entry per run directory under the root.
	Runs() ([]RunInfo, error)
	// Read returns the raw bytes of the artifact at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the artifact at path, creating the run
	// directory if needed.
	Write(path string, content []byte) error
	// Append appends content to the artifact at path, creating it if needed.
	Append(path string, content []byte) error
	// Exists reports whether the artifact at path is present.
	Exists(path string) bool
	// Root returns the absolute runs root directory.
	Root() string
}

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the runs directory
}

// NewFS creates an FS provider rooted at dir, creating it if absent.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("runstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("runstore: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute runs root directory.
func (f *FS) Root() string { return f.root }

// safePath resolves rel against the runs root and rejects any result that
// escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if cleaned == "" || cleaned == "." {
		return f.root, nil
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("runstore: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("runstore: resolve path: %w", err)
	}
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("runstore: path escapes runs root: %s", rel)
	}
	return abs, nil
}

// Runs lists the run directories under the root.
func (f *FS) Runs() ([]RunInfo, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("runstore: list runs: %w", err)
	}
	var out []RunInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, RunInfo{ID: e.Name(), ModTime: info.ModTime()})
	}
	return out, nil
}

// Read returns the raw bytes of a run artifact.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("runstore: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces an artifact: tmp file, fsync, rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("runstore: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".guide-tmp-*")
	if err != nil {
		return fmt.Errorf("runstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("runstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("runstore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("runstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("runstore: rename: %w", err)
	}
	success = true
	return nil
}

// Append appends content to an artifact, creating it on first use. Appends
// are flushed before returning so the file is complete after every call.
func (f *FS) Append(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("runstore: mkdir: %w", err)
	}
	file, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("runstore: open %s: %w", path, err)
	}
	defer file.Close()
	if _, err := file.Write(content); err != nil {
		return fmt.Errorf("runstore: append %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("runstore: fsync %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an artifact is present.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}
