package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/acrsantana/project-guide/internal"
	pkgconfig "github.com/acrsantana/project-guide/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func analyze(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	projectDir := cmd.String("project")
	if projectDir == "" {
		return fmt.Errorf("project directory is required (--project flag or GUIDE_TARGET_PROJECT_DIRECTORY)")
	}

	return internal.Analyze(ctx,
		internal.WithConfig(cfg),
		internal.WithProjectDir(projectDir),
	)
}

func runs(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ListRuns(ctx, internal.WithConfig(cfg))
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Serve(ctx, internal.WithConfig(cfg))
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "project-guide",
		Usage: "Analyze a project tree with an LLM and generate a developer guide",
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Walk a project, summarize every file and directory, and generate the guide",
				Action: analyze,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "project",
						Aliases: []string{"p"},
						Usage:   "Path to the project directory to analyze",
						Sources: cli.EnvVars("GUIDE_TARGET_PROJECT_DIRECTORY"),
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "List recorded analysis runs",
				Action: runs,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "serve",
				Usage:  "Serve the read-only HTTP API over recorded runs",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve analysis runs over the Model Context Protocol on stdio",
				Action: mcp,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
