// Package findings holds the durable record of summaries produced by a run:
// a structured JSON findings store and a plain-text transcript.
package findings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"

	"github.com/acrsantana/project-guide/internal/apperr"
	"github.com/acrsantana/project-guide/internal/runstore"
)

// Findings is the full structure persisted in findings.json. Keys in
// Directories and Files are paths relative to the project root with
// forward-slash separators; the project root itself is keyed ".".
type Findings struct {
	RootSummary string            `json:"root_summary"`
	Directories map[string]string `json:"directories"`
	Files       map[string]string `json:"files"`
}

// NewFindings returns the initial empty structure.
func NewFindings() *Findings {
	return &Findings{
		Directories: map[string]string{},
		Files:       map[string]string{},
	}
}

// Store reads and writes one run's findings file.
//
// Every mutation is a read-modify-write over the full structure followed by
// an atomic rewrite of the whole file, so the store is reconstructible from
// disk at any point. The read-modify-write is not concurrency-safe; the
// pipeline serializes all updates.
type Store struct {
	files runstore.Provider
	path  string // relative to the runs root
}

// NewStore creates a store for the findings file of run id.
func NewStore(files runstore.Provider, id string) *Store {
	return &Store{files: files, path: path.Join(id, runstore.FindingsFile)}
}

// Init writes the initial empty structure to disk.
func (s *Store) Init() error {
	return s.Write(NewFindings())
}

// Read loads the full structure from disk.
func (s *Store) Read() (*Findings, error) {
	data, err := s.files.Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("findings: read: %w", err)
	}
	var f Findings
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("findings: decode %s: %w: %s", s.path, apperr.ErrStoreCorrupt, err)
	}
	if f.Directories == nil {
		f.Directories = map[string]string{}
	}
	if f.Files == nil {
		f.Files = map[string]string{}
	}
	return &f, nil
}

// Write atomically replaces the full structure on disk.
func (s *Store) Write(f *Findings) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("findings: encode: %w", err)
	}
	if err := s.files.Write(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("findings: write: %w", err)
	}
	return nil
}

// SetRootSummary records the project-level summary.
func (s *Store) SetRootSummary(text string) error {
	return s.update(func(f *Findings) {
		f.RootSummary = text
	})
}

// SetFile records a file summary under its relative path. Re-recording the
// same path overwrites the prior entry.
func (s *Store) SetFile(rel, text string) error {
	return s.update(func(f *Findings) {
		f.Files[Key(rel)] = text
	})
}

// SetDirectory records a directory summary under its relative path.
func (s *Store) SetDirectory(rel, text string) error {
	return s.update(func(f *Findings) {
		f.Directories[Key(rel)] = text
	})
}

func (s *Store) update(mutate func(*Findings)) error {
	f, err := s.Read()
	if err != nil {
		return err
	}
	mutate(f)
	return s.Write(f)
}

// Key normalizes a relative path into the store's key form.
func Key(rel string) string {
	return filepath.ToSlash(rel)
}
