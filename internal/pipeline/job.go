// Package pipeline runs one parse job per compile database entry and feeds
// the resulting declarations into a shared symbolgraph.Builder.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/standardbeagle/codenodes/internal/alloc"
	"github.com/standardbeagle/codenodes/internal/builddesc"
	"github.com/standardbeagle/codenodes/internal/debug"
	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/symbolgraph"
)

// FileResult is the outcome of one parse job
type FileResult struct {
	File        string
	Diagnostics int
	// Errors counts diagnostics of error or fatal severity
	Errors int
	// TopLevel is the number of top-level declarations handed to the builder
	TopLevel int
	Duration time.Duration
	// Skipped is set for entries never started because the run was cancelled
	Skipped bool
	Err     error
}

// Failed reports whether the front-end produced no translation unit
func (r FileResult) Failed() bool {
	return r.Err != nil
}

// job parses one file. The front-end work happens without holding the
// builder lock; only VisitTopLevel serializes.
type job struct {
	entry    builddesc.Entry
	frontend frontend.Frontend
	builder  *symbolgraph.Builder
	scratch  *alloc.SlabAllocator[frontend.Cursor]
}

func (j *job) run(ctx context.Context) (res FileResult) {
	start := time.Now()
	res.File = j.entry.File
	defer func() { res.Duration = time.Since(start) }()

	ctx = debug.WithLogger(ctx, debug.Ctx(ctx).With(slog.String("file", j.entry.File)))
	log := debug.Ctx(ctx)

	tu, err := j.frontend.Parse(ctx, j.entry.File, j.entry.Args)
	if err != nil {
		res.Err = lcierrors.NewParseError(j.entry.File, err).WithArgs(j.entry.Args)
		log.Error("parse failed", slog.Any("error", err))
		return res
	}
	defer tu.Close()

	for _, d := range tu.Diagnostics() {
		res.Diagnostics++
		level := slog.LevelDebug
		switch d.Severity {
		case frontend.SeverityWarning:
			level = slog.LevelInfo
		case frontend.SeverityError, frontend.SeverityFatal:
			res.Errors++
			level = slog.LevelWarn
		}
		log.Log(ctx, level, d.Message,
			slog.String("severity", d.Severity.String()),
			slog.String("at", d.Location.String()))
	}

	top := j.scratch.Get(64)
	top = j.collect(tu.Cursor(), top)
	for _, c := range top {
		if ctx.Err() != nil {
			break
		}
		j.builder.VisitTopLevel(ctx, c)
		res.TopLevel++
	}
	j.scratch.Put(top)

	log.Debug("parsed", slog.Int("top_level", res.TopLevel), slog.Int("diagnostics", res.Diagnostics))
	return res
}

// collect appends the top-level declarations of scope, looking through
// extern "C" blocks and other transparent wrappers.
func (j *job) collect(scope frontend.Cursor, into []frontend.Cursor) []frontend.Cursor {
	scope.VisitChildren(func(child frontend.Cursor) frontend.ChildVisit {
		if symbolgraph.IsTransparent(child.Kind()) {
			into = j.collect(child, into)
		} else {
			into = j.scratch.Append(into, child)
		}
		return frontend.VisitContinue
	})
	return into
}
