package pipeline

import (
	"time"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/symbolgraph"
)

// Report summarizes a run
type Report struct {
	// Files holds one result per entry, in entry order
	Files    []FileResult
	Stats    symbolgraph.Stats
	Symbols  int
	Duration time.Duration
}

func newReport(files []FileResult, b *symbolgraph.Builder, elapsed time.Duration) *Report {
	return &Report{
		Files:    files,
		Stats:    b.Stats(),
		Symbols:  b.Forest().Len(),
		Duration: elapsed,
	}
}

// Failed returns the files the front-end could not parse
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Failed() {
			failed = append(failed, f)
		}
	}
	return failed
}

// Parsed counts files that produced a translation unit
func (r *Report) Parsed() int {
	n := 0
	for _, f := range r.Files {
		if !f.Failed() && !f.Skipped {
			n++
		}
	}
	return n
}

// Diagnostics sums diagnostics over all files
func (r *Report) Diagnostics() int {
	n := 0
	for _, f := range r.Files {
		n += f.Diagnostics
	}
	return n
}

// Err aggregates per-file failures, or nil when every file parsed
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, f.Err)
	}
	return lcierrors.NewMultiError(errs).ErrorOrNil()
}
