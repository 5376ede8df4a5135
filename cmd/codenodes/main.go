package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codenodes/internal/debug"
	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/version"
)

// buildFlags are shared by every command that produces a graph
func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "compile-commands",
			Aliases: []string{"c"},
			Usage:   "Compilation database (default: search the project for compile_commands.json)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Graph output file (default: symbols.<format> in the project root)",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: graphml, json or yaml",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Parallel parse jobs (0 = number of CPUs minus one)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Only parse files matching glob patterns (e.g., --include 'src/**')",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Skip files matching glob patterns (e.g., --exclude '**/third_party/**')",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "codenodes",
		Usage:                  "Build a symbol graph of a C/C++ project from its compilation database",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file path (default: .codenodes.kdl or .codenodes.toml in the root)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text or json",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable coloured log output",
			},
		}, buildFlags()...),
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Parse every translation unit and write the symbol graph",
				Flags:  buildFlags(),
				Action: buildCommand,
			},
			{
				Name:      "lookup",
				Aliases:   []string{"l"},
				Usage:     "Build the graph and show a symbol with its references",
				ArgsUsage: "NAME",
				Flags: append(buildFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum fuzzy matches when there is no exact hit",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				),
				Action: lookupCommand,
			},
			{
				Name:   "watch",
				Usage:  "Build, then rebuild the graph whenever a source or header changes",
				Flags:  buildFlags(),
				Action: watchCommand,
			},
			{
				Name:  "serve",
				Usage: "Build the graph and answer symbol queries as an MCP stdio server",
				Flags: append(buildFlags(),
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Rebuild and swap the served graph when sources change",
					},
				),
				Action: serveCommand,
			},
		},
		Before: func(c *cli.Context) error {
			base := debug.DefaultOptions()
			base.Color = debug.IsTerminal(os.Stderr)
			opts, err := logOptions(c, base)
			if err != nil {
				return err
			}
			c.Context = debug.WithLogger(c.Context, debug.NewLogger(os.Stderr, opts))
			return nil
		},
		Action: buildCommand,
	}
}

// logOptions applies the logging flags on top of base. Before runs with
// built-in defaults; the config file's log section is layered in once the
// project is loaded.
func logOptions(c *cli.Context, base debug.Options) (debug.Options, error) {
	opts := base
	if c.IsSet("log-level") {
		level, err := debug.ParseLevel(c.String("log-level"))
		if err != nil {
			return opts, lcierrors.NewConfigError("log-level", c.String("log-level"), err)
		}
		opts.Level = level
	}
	if c.IsSet("log-format") {
		opts.Format = c.String("log-format")
	}
	if c.Bool("no-color") {
		opts.Color = false
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
