package oracle

import (
	"context"
	"fmt"
	"net/url"

	ollama "github.com/JexSrs/go-ollama"

	"github.com/acrsantana/project-guide/internal/apperr"
)

// OllamaConfig configures the local Ollama provider.
type OllamaConfig struct {
	Host         string
	Model        string
	MaxPromptLen int
}

// Ollama is an Oracle backed by a local Ollama instance.
type Ollama struct {
	cfg    OllamaConfig
	client *ollama.Ollama
}

var _ Oracle = (*Ollama)(nil)

// NewOllama creates the Ollama provider.
func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("oracle: invalid ollama host %q: %w", cfg.Host, err)
	}
	return &Ollama{cfg: cfg, client: ollama.New(*u)}, nil
}

// Summarize issues a single non-streaming generation.
func (o *Ollama) Summarize(ctx context.Context, req Request) (string, error) {
	res, err := o.client.Generate(
		o.client.Generate.WithModel(o.cfg.Model),
		o.client.Generate.WithSystem(req.System),
		o.client.Generate.WithPrompt(clampPrompt(req.Prompt, o.cfg.MaxPromptLen)),
	)
	if err != nil {
		return "", fmt.Errorf("oracle: ollama generate: %w", err)
	}
	if !res.Done {
		return "", fmt.Errorf("oracle: ollama response not complete")
	}
	if res.Response == "" {
		return "", fmt.Errorf("oracle: %w", apperr.ErrEmptyCompletion)
	}
	return cleanResponse(res.Response), nil
}
