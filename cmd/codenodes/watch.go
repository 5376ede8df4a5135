package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codenodes/internal/config"
	"github.com/standardbeagle/codenodes/internal/debug"
	"github.com/standardbeagle/codenodes/internal/watch"
)

func watchCommand(c *cli.Context) error {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}
	if err := buildAndWrite(ctx, cfg); err != nil {
		return err
	}

	return watchProject(ctx, cfg, func(ctx context.Context, changed []string) error {
		return buildAndWrite(ctx, cfg)
	})
}

// watchProject runs rebuild after source changes until ctx is cancelled.
// The watched directories come from the compilation database as it is at
// startup.
func watchProject(ctx context.Context, cfg *config.Config, rebuild watch.Rebuild) error {
	entries, err := loadEntries(ctx, cfg)
	if err != nil {
		return err
	}

	var gitignore *config.GitignoreParser
	if cfg.Filter.RespectGitignore {
		gitignore = config.NewGitignoreParser()
		if err := gitignore.LoadGitignore(cfg.Root); err != nil {
			debug.Ctx(ctx).Warn("failed to read .gitignore", slog.Any("error", err))
			gitignore = nil
		}
	}

	fw, err := watch.NewFileWatcher(ctx, watch.Options{
		Root:       cfg.Root,
		DebounceMs: cfg.Watch.DebounceMs,
		Exclude:    cfg.Filter.Exclude,
		Gitignore:  gitignore,
	}, rebuild)
	if err != nil {
		return err
	}
	if err := fw.Start(watch.Dirs(entries)); err != nil {
		_ = fw.Stop()
		return err
	}

	<-ctx.Done()
	stats := fw.GetStats()
	debug.Ctx(ctx).Info("stopping watch",
		slog.Int64("events", stats.EventsProcessed),
		slog.Int64("errors", stats.ErrorCount))
	return fw.Stop()
}
