package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codenodes/internal/mcp"
	"github.com/standardbeagle/codenodes/internal/query"
)

func serveCommand(c *cli.Context) error {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}
	entries, err := loadEntries(ctx, cfg)
	if err != nil {
		return err
	}
	forest, report, err := buildGraph(ctx, cfg, entries)
	if err != nil {
		return err
	}
	logSummary(ctx, report)

	server := mcp.NewServer(ctx, query.New(forest))
	if !c.Bool("watch") {
		return server.Run(ctx)
	}

	// the watcher stops when the client disconnects
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return server.Run(gctx)
	})
	g.Go(func() error {
		return watchProject(gctx, cfg, func(ctx context.Context, changed []string) error {
			entries, err := loadEntries(ctx, cfg)
			if err != nil {
				return err
			}
			forest, report, err := buildGraph(ctx, cfg, entries)
			if err != nil {
				return err
			}
			logSummary(ctx, report)
			server.SetIndex(query.New(forest))
			return nil
		})
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
