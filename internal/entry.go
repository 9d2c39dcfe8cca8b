// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/acrsantana/project-guide/internal/analysis"
	"github.com/acrsantana/project-guide/internal/catalog"
	"github.com/acrsantana/project-guide/internal/checksum"
	"github.com/acrsantana/project-guide/internal/mcpserver"
	"github.com/acrsantana/project-guide/internal/oracle"
	"github.com/acrsantana/project-guide/internal/pathfilter"
	"github.com/acrsantana/project-guide/internal/runstore"
)

func newApplication(opts []Option) (*application, *slog.Logger, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

func buildOracle(cfg OracleConfig) (oracle.Oracle, error) {
	switch cfg.Provider {
	case ProviderOllama:
		return oracle.NewOllama(oracle.OllamaConfig{
			Host:         cfg.Host,
			Model:        cfg.Model,
			MaxPromptLen: cfg.MaxPromptLen,
		})
	default:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic API key is not set")
		}
		return oracle.NewAnthropic(oracle.AnthropicConfig{
			APIKey:       apiKey,
			Model:        cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			MaxPromptLen: cfg.MaxPromptLen,
		}), nil
	}
}

// openCatalog opens the run catalog. A broken catalog never blocks an
// analysis run, so failures are logged and a nil catalog is returned.
func openCatalog(cfg RunsConfig, logger *slog.Logger) *catalog.DB {
	db, err := catalog.Open(cfg.Catalog)
	if err != nil {
		logger.Warn("run catalog unavailable", slog.String("error", err.Error()))
		return nil
	}
	return db
}

// Analyze walks the configured project, collects summaries for every
// file and directory, and synthesizes the developer guide.
func Analyze(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	if app.projectDir == "" {
		return fmt.Errorf("project directory is required")
	}

	orc, err := buildOracle(cfg.Oracle)
	if err != nil {
		return err
	}

	files, err := runstore.NewFS(cfg.Runs.Dir)
	if err != nil {
		return fmt.Errorf("init runs dir: %w", err)
	}

	rc, err := analysis.NewRunContext(app.projectDir, files, logger)
	if err != nil {
		return err
	}

	db := openCatalog(cfg.Runs, logger)
	if db != nil {
		defer db.Close()
		if err := db.StartRun(rc.ID, rc.ProjectDir); err != nil {
			logger.Warn("catalog start failed", slog.String("error", err.Error()))
		}
	}

	rc.Logger.Info("analysis started",
		slog.String("project_dir", rc.ProjectDir),
		slog.String("model", cfg.Oracle.Model))

	filter := pathfilter.Default()
	if err := analysis.NewProjectAnalyzer(rc, orc, filter).Run(ctx); err != nil {
		finishCatalogRun(db, rc, files, catalog.StatusFailed, logger)
		return err
	}

	if _, err := analysis.NewSynthesizer(rc, orc).Generate(ctx); err != nil {
		finishCatalogRun(db, rc, files, catalog.StatusFailed, logger)
		return err
	}

	finishCatalogRun(db, rc, files, catalog.StatusComplete, logger)

	f, err := rc.Store.Read()
	if err != nil {
		return err
	}
	rc.Logger.Info("analysis complete",
		slog.Int("files", len(f.Files)),
		slog.Int("directories", len(f.Directories)),
		slog.String("guide", rc.GuidePath()))
	return nil
}

func finishCatalogRun(db *catalog.DB, rc *analysis.RunContext, files runstore.Provider, status string, logger *slog.Logger) {
	if db == nil {
		return
	}
	var nFiles, nDirs int
	var cs string
	if f, err := rc.Store.Read(); err == nil {
		nFiles, nDirs = len(f.Files), len(f.Directories)
	}
	if data, err := files.Read(path.Join(rc.ID, runstore.FindingsFile)); err == nil {
		cs = checksum.Sum(data)
	}
	if err := db.FinishRun(rc.ID, status, nFiles, nDirs, cs); err != nil {
		logger.Warn("catalog finish failed", slog.String("error", err.Error()))
	}
}

// ListRuns prints the recorded runs to stdout, newest first.
func ListRuns(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}

	files, err := runstore.NewFS(app.config.Runs.Dir)
	if err != nil {
		return fmt.Errorf("init runs dir: %w", err)
	}

	db := openCatalog(app.config.Runs, logger)
	if db == nil {
		// Fall back to bare directory names.
		runs, err := files.Runs()
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Println(r.ID)
		}
		return nil
	}
	defer db.Close()

	if err := catalog.Sync(db, files, logger, nil); err != nil {
		logger.Warn("catalog sync failed", slog.String("error", err.Error()))
	}
	rows, err := db.ListRuns()
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("%s\t%s\t%d files\t%d directories\n", r.ID, r.Status, r.Files, r.Directories)
	}
	return nil
}

// ServeMCP starts the MCP server on stdin/stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}

	files, err := runstore.NewFS(app.config.Runs.Dir)
	if err != nil {
		return fmt.Errorf("init runs dir: %w", err)
	}

	db := openCatalog(app.config.Runs, logger)
	if db == nil {
		return fmt.Errorf("mcp server requires the run catalog")
	}
	defer db.Close()

	if err := catalog.Sync(db, files, logger, nil); err != nil {
		logger.Warn("catalog sync failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(files, db).ServeStdio()
}
