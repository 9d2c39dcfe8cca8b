package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/acrsantana/project-guide/internal/oracle"
)

// Synthesizer turns a completed run's findings store and transcript into a
// single developer guide. All of the work is delegated to the oracle; this
// component only assembles the request and persists the verbatim response.
type Synthesizer struct {
	rc  *RunContext
	orc oracle.Oracle
}

// NewSynthesizer creates the synthesizer for one run.
func NewSynthesizer(rc *RunContext, orc oracle.Oracle) *Synthesizer {
	return &Synthesizer{rc: rc, orc: orc}
}

// Generate reads back the full findings store and transcript, requests the
// eight-section guide, and writes it as the run's deliverable. Any failure
// here is fatal to the run; there is no partial guide.
func (s *Synthesizer) Generate(ctx context.Context) (string, error) {
	s.rc.Logger.Info("generating developer guide")

	f, err := s.rc.Store.Read()
	if err != nil {
		return "", err
	}
	transcript, err := s.rc.Transcript.Read()
	if err != nil {
		return "", err
	}
	detailed, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("analysis: encode findings: %w", err)
	}

	guide, err := s.orc.Summarize(ctx, guideRequest(transcript, string(detailed)))
	if err != nil {
		return "", fmt.Errorf("analysis: synthesize guide: %w", err)
	}

	if err := s.rc.Files.Write(s.rc.GuidePath(), []byte(guide)); err != nil {
		return "", err
	}
	s.rc.Logger.Info("developer guide written", slog.String("path", s.rc.GuidePath()))
	return guide, nil
}
