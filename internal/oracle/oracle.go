// Package oracle defines the summarization contract and its providers.
//
// The pipeline only ever sends one system instruction plus one text payload
// and reads back a single text string; everything else about the provider
// (transport, auth, retries) stays behind the Oracle interface.
package oracle

import (
	"context"
	"log/slog"
	"strings"
)

// Request is one summarization request.
type Request struct {
	// System is the role instruction for the oracle.
	System string
	// Prompt is the full text payload.
	Prompt string
}

// Oracle produces natural-language text for a request.
type Oracle interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// clampPrompt truncates prompt to max bytes, logging when it does.
// A max of zero disables clamping.
func clampPrompt(prompt string, max int) string {
	if max <= 0 || len(prompt) <= max {
		return prompt
	}
	slog.Warn("oracle: truncating prompt",
		slog.Int("length", len(prompt)),
		slog.Int("max", max))
	return prompt[:max]
}

// cleanResponse strips surrounding whitespace and stray code fences that
// some models wrap around plain-text answers.
func cleanResponse(text string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "`"))
}
