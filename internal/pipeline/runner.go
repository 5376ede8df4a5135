package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codenodes/internal/alloc"
	"github.com/standardbeagle/codenodes/internal/builddesc"
	"github.com/standardbeagle/codenodes/internal/debug"
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/symbolgraph"
)

// DefaultWorkers leaves one CPU for the caller
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// Options configure a Runner
type Options struct {
	// Workers bounds concurrent parse jobs; values below 1 mean DefaultWorkers
	Workers int
	// OnFileDone is called after every finished job, from the job goroutine
	OnFileDone func(done, total int, res FileResult)
}

// Runner parses compile database entries in parallel into one Builder
type Runner struct {
	frontend frontend.Frontend
	builder  *symbolgraph.Builder
	opts     Options
	scratch  *alloc.SlabAllocator[frontend.Cursor]
}

// NewRunner creates a runner feeding builder
func NewRunner(fe frontend.Frontend, builder *symbolgraph.Builder, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers()
	}
	return &Runner{
		frontend: fe,
		builder:  builder,
		opts:     opts,
		scratch:  alloc.NewSlabAllocatorWithDefaults[frontend.Cursor](),
	}
}

// Builder returns the builder the runner feeds
func (r *Runner) Builder() *symbolgraph.Builder {
	return r.builder
}

// errFatal stops the group after a job panicked; the panic value is
// re-raised on the caller's goroutine.
var errFatal = errors.New("parse job panicked")

// Run parses every entry. A file that fails to parse is recorded in the
// report and does not stop the others; only cancellation of ctx ends the
// run early, in which case the partial report is returned with ctx.Err().
//
// A panic inside a job, such as a kind mismatch from the builder, is
// re-raised on the calling goroutine after the other jobs have stopped.
func (r *Runner) Run(ctx context.Context, entries []builddesc.Entry) (*Report, error) {
	start := time.Now()
	ctx = debug.Component(ctx, "pipeline")
	log := debug.Ctx(ctx)

	results := make([]FileResult, len(entries))
	for i, e := range entries {
		results[i] = FileResult{File: e.File, Skipped: true}
	}

	var (
		done      atomic.Int64
		fatalOnce sync.Once
		fatal     any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	log.Info("parsing", slog.Int("files", len(entries)), slog.Int("workers", r.opts.Workers))
	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					fatalOnce.Do(func() { fatal = p })
					err = errFatal
				}
			}()
			if gctx.Err() != nil {
				return nil
			}

			j := &job{entry: e, frontend: r.frontend, builder: r.builder, scratch: r.scratch}
			results[i] = j.run(gctx)

			n := int(done.Add(1))
			if r.opts.OnFileDone != nil {
				r.opts.OnFileDone(n, len(entries), results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	if fatal != nil {
		panic(fatal)
	}

	report := newReport(results, r.builder, time.Since(start))
	log.Info("parsed",
		slog.Int("files", len(results)),
		slog.Int("failed", len(report.Failed())),
		slog.Int("symbols", report.Symbols),
		slog.Duration("elapsed", report.Duration))

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled: %w", err)
	}
	return report, nil
}
