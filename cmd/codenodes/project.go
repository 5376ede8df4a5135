package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codenodes/internal/builddesc"
	"github.com/standardbeagle/codenodes/internal/config"
	"github.com/standardbeagle/codenodes/internal/debug"
	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/frontend/cppfront"
	"github.com/standardbeagle/codenodes/internal/pipeline"
	"github.com/standardbeagle/codenodes/internal/symbolgraph"
	"github.com/standardbeagle/codenodes/internal/symbols"
	"github.com/standardbeagle/codenodes/pkg/pathutil"
)

// loadConfigWithOverrides loads the project configuration and applies CLI
// flag overrides. Relative paths given on the command line are taken from
// the working directory, not the project root.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")

	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("root") {
		if cfg.Root, err = filepath.Abs(root); err != nil {
			return nil, lcierrors.NewConfigError("root", root, err)
		}
	}
	if c.IsSet("compile-commands") {
		if cfg.Build.CompileCommands, err = filepath.Abs(c.String("compile-commands")); err != nil {
			return nil, lcierrors.NewConfigError("compile-commands", c.String("compile-commands"), err)
		}
	}
	if c.IsSet("output") {
		if cfg.Build.Output, err = filepath.Abs(c.String("output")); err != nil {
			return nil, lcierrors.NewConfigError("output", c.String("output"), err)
		}
	}
	if c.IsSet("format") {
		// the default output name follows the format
		if !c.IsSet("output") && cfg.Build.Output == "symbols."+cfg.Build.Format {
			cfg.Build.Output = ""
		}
		cfg.Build.Format = c.String("format")
	}
	if c.IsSet("jobs") {
		cfg.Performance.Workers = c.Int("jobs")
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filter.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filter.Exclude = config.DeduplicatePatterns(append(cfg.Filter.Exclude, excludes...))
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and returns a context whose logger honours
// the config file's log section, unless a flag overrode it.
func setup(c *cli.Context) (context.Context, *config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}

	level, _ := debug.ParseLevel(cfg.Log.Level)
	opts, err := logOptions(c, debug.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Color:  cfg.Log.Color && debug.IsTerminal(os.Stderr),
	})
	if err != nil {
		return nil, nil, err
	}
	ctx := debug.WithLogger(c.Context, debug.NewLogger(os.Stderr, opts))
	debug.Ctx(ctx).Debug("configuration loaded",
		slog.String("root", cfg.Root),
		slog.String("source", cfg.Source),
		slog.Int("workers", cfg.Performance.Workers))
	return ctx, cfg, nil
}

// loadEntries reads the compilation database and applies the file filters
func loadEntries(ctx context.Context, cfg *config.Config) ([]builddesc.Entry, error) {
	path, err := cfg.CompileCommandsPath()
	if err != nil {
		return nil, err
	}
	entries, err := builddesc.Load(path)
	if err != nil {
		return nil, err
	}
	total := len(entries)

	entries, err = builddesc.Filter(entries, cfg.Root, cfg.Filter.Include, cfg.Filter.Exclude)
	if err != nil {
		return nil, lcierrors.NewConfigError("filter", "", err)
	}

	if cfg.Filter.RespectGitignore {
		gp := config.NewGitignoreParser()
		if err := gp.LoadGitignore(cfg.Root); err != nil {
			debug.Ctx(ctx).Warn("failed to read .gitignore", slog.Any("error", err))
		} else {
			entries = dropIgnored(entries, cfg.Root, gp)
		}
	}

	log := debug.Ctx(ctx)
	log.Info("compilation database loaded",
		slog.String("path", path),
		slog.Int("entries", total),
		slog.Int("selected", len(entries)))
	if len(entries) == 0 {
		log.Warn("no translation units selected; the graph will only contain the global namespace")
	}
	return entries, nil
}

func dropIgnored(entries []builddesc.Entry, root string, gp *config.GitignoreParser) []builddesc.Entry {
	kept := entries[:0:0]
	for _, e := range entries {
		if rel, ok := pathutil.Within(e.File, root); ok && gp.ShouldIgnore(rel, false) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// buildGraph parses entries into a fresh forest. A kind mismatch raised by
// the builder comes back as an error instead of a crash.
func buildGraph(ctx context.Context, cfg *config.Config, entries []builddesc.Entry) (forest *symbols.Forest, report *pipeline.Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			km, ok := p.(*lcierrors.KindMismatchError)
			if !ok {
				panic(p)
			}
			forest, report, err = nil, nil, km
		}
	}()

	fe := cppfront.New(cppfront.Options{
		MaxIncludeDepth:      cfg.Frontend.MaxIncludeDepth,
		FollowSystemIncludes: cfg.Frontend.FollowSystemIncludes,
		ExtraArgs:            cfg.Frontend.ExtraArgs,
	})
	builder := symbolgraph.NewBuilder()
	log := debug.Ctx(ctx)
	runner := pipeline.NewRunner(fe, builder, pipeline.Options{
		Workers: cfg.Performance.Workers,
		OnFileDone: func(done, total int, res pipeline.FileResult) {
			if res.Failed() {
				log.Warn("parse failed",
					slog.String("file", pathutil.ToRelative(res.File, cfg.Root)),
					slog.Any("error", res.Err))
				return
			}
			log.Debug("parsed file",
				slog.String("file", pathutil.ToRelative(res.File, cfg.Root)),
				slog.Int("done", done),
				slog.Int("total", total),
				slog.Int("diagnostics", res.Diagnostics))
		},
	})

	report, err = runner.Run(ctx, entries)
	if err != nil {
		return nil, report, err
	}
	return builder.Forest(), report, nil
}

// logSummary reports per-file failures, which never change the exit status
func logSummary(ctx context.Context, report *pipeline.Report) {
	log := debug.Ctx(ctx)
	if err := report.Err(); err != nil {
		log.Warn("some files could not be parsed",
			slog.Int("failed", len(report.Failed())),
			slog.Any("error", err))
	}
	log.Info("symbol graph built",
		slog.Int("files", report.Parsed()),
		slog.Int("symbols", report.Symbols),
		slog.Int("diagnostics", report.Diagnostics()),
		slog.Duration("elapsed", report.Duration))
}
