package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/codenodes/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// TimeFormat is the timestamp layout used by the console handler
const TimeFormat = "15:04:05.000"

// Options controls how NewLogger builds its handler
type Options struct {
	Level  slog.Level
	Format string // "text" or "json"
	Color  bool
}

// DefaultOptions returns info-level coloured text output, or debug level
// when IsDebugEnabled reports true.
func DefaultOptions() Options {
	opts := Options{Level: slog.LevelInfo, Format: "text", Color: true}
	if IsDebugEnabled() {
		opts.Level = slog.LevelDebug
	}
	return opts
}

// IsDebugEnabled returns true if debug mode is enabled by build flag or environment
func IsDebugEnabled() bool {
	// Check build flag first
	if EnableDebug == "true" {
		return true
	}

	// Allow runtime override via environment variable
	v := os.Getenv("CODENODES_DEBUG")
	return v == "1" || v == "true"
}

// ParseLevel maps a config or flag value onto a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger builds the process logger. Diagnostics always go to w, which the
// CLI points at stderr so they never mix with graph output.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      opts.Level,
			TimeFormat: TimeFormat,
			NoColor:    !opts.Color,
		})
	}
	return slog.New(slogctx.NewHandler(handler, nil))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// IsTerminal reports whether f is attached to a character device
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// WithLogger stores logger in ctx
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return slogctx.NewCtx(ctx, logger)
}

// Ctx returns the logger carried by ctx, or slog's default logger
func Ctx(ctx context.Context) *slog.Logger {
	return slogctx.FromCtx(ctx)
}

// Component tags every record logged through the returned context
func Component(ctx context.Context, name string) context.Context {
	return slogctx.With(ctx, "component", name)
}
