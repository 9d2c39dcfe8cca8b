package api

import (
	"errors"
	"io/fs"
	"path"
	"time"

	"github.com/acrsantana/project-guide/internal/apperr"
	"github.com/acrsantana/project-guide/internal/catalog"
	"github.com/acrsantana/project-guide/internal/findings"
	"github.com/acrsantana/project-guide/internal/runstore"
)

// Service coordinates catalog and run-directory reads for the API layer.
// It is strictly read-only: the HTTP surface never mutates a run.
type Service struct {
	db    catalog.RunCatalog
	files runstore.Provider
}

// NewService creates a new API service.
func NewService(db catalog.RunCatalog, files runstore.Provider) *Service {
	return &Service{db: db, files: files}
}

// RunSummary is a lightweight item in the runs list response.
type RunSummary struct {
	ID          string     `json:"id"`
	ProjectDir  string     `json:"project_dir,omitempty"`
	Status      string     `json:"status"`
	Files       int        `json:"files"`
	Directories int        `json:"directories"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// RunDetail is the response payload for a single run.
type RunDetail struct {
	RunSummary
	HasGuide      bool `json:"has_guide"`
	HasTranscript bool `json:"has_transcript"`
}

func toSummary(r catalog.RunRow) RunSummary {
	s := RunSummary{
		ID:          r.ID,
		ProjectDir:  r.ProjectDir,
		Status:      r.Status,
		Files:       r.Files,
		Directories: r.Directories,
		StartedAt:   r.StartedAt,
	}
	if !r.FinishedAt.IsZero() {
		finished := r.FinishedAt
		s.FinishedAt = &finished
	}
	return s
}

// ListRuns returns all cataloged runs, newest first.
func (s *Service) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.ListRuns()
	if err != nil {
		return nil, err
	}
	out := make([]RunSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, toSummary(r))
	}
	return out, nil
}

// GetRun returns one run enriched with artifact availability.
func (s *Service) GetRun(id string) (*RunDetail, error) {
	row, err := s.db.GetRun(id)
	if err != nil {
		return nil, err
	}
	return &RunDetail{
		RunSummary:    toSummary(*row),
		HasGuide:      s.files.Exists(path.Join(id, runstore.GuideFile)),
		HasTranscript: s.files.Exists(path.Join(id, runstore.TranscriptFile)),
	}, nil
}

// Findings reads a run's structured findings from disk.
func (s *Service) Findings(id string) (*findings.Findings, error) {
	f, err := findings.NewStore(s.files, id).Read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.ErrNotFound
	}
	return f, err
}

// Transcript reads a run's transcript text from disk.
func (s *Service) Transcript(id string) (string, error) {
	if !s.files.Exists(path.Join(id, runstore.FindingsFile)) {
		return "", apperr.ErrNotFound
	}
	return findings.NewTranscript(s.files, id).Read()
}

// Guide reads a run's guide deliverable from disk.
func (s *Service) Guide(id string) (string, error) {
	data, err := s.files.Read(path.Join(id, runstore.GuideFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Search performs a full-text search over finding summaries.
func (s *Service) Search(query string, limit int) ([]catalog.SearchHit, error) {
	return s.db.Search(query, limit)
}
