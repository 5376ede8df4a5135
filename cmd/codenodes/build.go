package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codenodes/internal/config"
	"github.com/standardbeagle/codenodes/internal/debug"
	"github.com/standardbeagle/codenodes/internal/emit"
)

func buildCommand(c *cli.Context) error {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}
	return buildAndWrite(ctx, cfg)
}

// buildAndWrite runs one full build and replaces the output file. Nothing
// is written when the compilation database cannot be read.
func buildAndWrite(ctx context.Context, cfg *config.Config) error {
	entries, err := loadEntries(ctx, cfg)
	if err != nil {
		return err
	}
	forest, report, err := buildGraph(ctx, cfg, entries)
	if err != nil {
		return err
	}
	logSummary(ctx, report)

	out := cfg.OutputPath()
	if err := emit.WriteFile(out, emit.Format(cfg.Build.Format), forest); err != nil {
		return err
	}
	debug.Ctx(ctx).Info("graph written", slog.String("path", out), slog.String("format", cfg.Build.Format))
	return nil
}
