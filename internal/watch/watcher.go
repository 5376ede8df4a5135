// Package watch rebuilds the symbol graph when C or C++ sources change
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codenodes/internal/builddesc"
	"github.com/standardbeagle/codenodes/internal/config"
	"github.com/standardbeagle/codenodes/internal/debug"
	"github.com/standardbeagle/codenodes/pkg/pathutil"
)

// SourcePattern matches the files whose changes trigger a rebuild
const SourcePattern = "**/*.{c,cc,cpp,cxx,h,hh,hpp,hxx,inl}"

// EventType is the kind of change seen for a file
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return "unknown"
}

// Options configure a FileWatcher
type Options struct {
	// Root is the project directory; exclusions are matched relative to it
	Root       string
	DebounceMs int
	Exclude    []string
	// Gitignore, when set, also filters events
	Gitignore *config.GitignoreParser
}

// FileWatcher watches directories for source changes and drives a
// DebouncedRebuilder
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	opts      Options
	rebuilder *DebouncedRebuilder
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	watched map[string]struct{}

	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex
}

// NewFileWatcher creates a watcher that calls rebuild after changes settle
func NewFileWatcher(ctx context.Context, opts Options, rebuild Rebuild) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(debug.Component(ctx, "watch"))
	return &FileWatcher{
		watcher:   watcher,
		opts:      opts,
		rebuilder: NewDebouncedRebuilder(ctx, rebuild, opts.DebounceMs),
		ctx:       ctx,
		cancel:    cancel,
		watched:   make(map[string]struct{}),
	}, nil
}

// Rebuilder exposes the debouncer, mostly for tests
func (fw *FileWatcher) Rebuilder() *DebouncedRebuilder {
	return fw.rebuilder
}

// Start watches dirs (not recursively) and begins processing events
func (fw *FileWatcher) Start(dirs []string) error {
	for _, dir := range dirs {
		if err := fw.add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	debug.Ctx(fw.ctx).Info("watching", "directories", len(fw.watched))

	fw.wg.Add(1)
	go fw.processEvents()
	return nil
}

func (fw *FileWatcher) add(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if _, ok := fw.watched[abs]; ok {
		return nil
	}
	if err := fw.watcher.Add(abs); err != nil {
		return err
	}
	fw.watched[abs] = struct{}{}
	return nil
}

// Stop ends event processing and waits for a running rebuild to finish
func (fw *FileWatcher) Stop() error {
	fw.cancel()
	err := fw.watcher.Close()
	fw.wg.Wait()
	fw.rebuilder.Shutdown()
	return err
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.incrementStats(0, 1)
			debug.Ctx(fw.ctx).Warn("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	var ev EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		ev = EventCreate
	case event.Op.Has(fsnotify.Write):
		ev = EventWrite
	case event.Op.Has(fsnotify.Remove):
		ev = EventRemove
	case event.Op.Has(fsnotify.Rename):
		ev = EventRename
	default:
		return
	}

	if !fw.shouldProcessPath(event.Name) {
		return
	}
	if ev != EventRemove && ev != EventRename {
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return
		}
	}

	fw.incrementStats(1, 0)
	fw.rebuilder.ScheduleRebuild(event.Name, ev)
}

// shouldProcessPath accepts C and C++ sources that are not excluded
func (fw *FileWatcher) shouldProcessPath(path string) bool {
	if !IsSource(path) {
		return false
	}
	if builddesc.MatchAny(fw.opts.Exclude, fw.opts.Root, path) {
		return false
	}
	if fw.opts.Gitignore != nil && fw.opts.Root != "" {
		if rel, ok := pathutil.Within(path, fw.opts.Root); ok {
			return !fw.opts.Gitignore.ShouldIgnore(rel, false)
		}
	}
	return true
}

// IsSource reports whether path names a C or C++ source or header
func IsSource(path string) bool {
	ok, _ := doublestar.Match(SourcePattern, filepath.Base(path))
	return ok
}

// Dirs returns the directories to watch for a build: the directory of every
// input file plus the include directories named by their arguments.
func Dirs(entries []builddesc.Entry) []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		if dir == "" {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, e := range entries {
		add(filepath.Dir(e.File))
		for i, arg := range e.Args {
			for _, flag := range []string{"-I", "-iquote", "-isystem"} {
				switch {
				case arg == flag && i+1 < len(e.Args):
					add(e.Args[i+1])
				case len(arg) > len(flag) && arg[:len(flag)] == flag:
					add(arg[len(flag):])
				}
			}
		}
	}
	return dirs
}

func (fw *FileWatcher) incrementStats(events, errors int64) {
	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()

	fw.eventsProcessed += events
	fw.errorCount += errors
	fw.lastEventTime = time.Now()
}

// GetStats returns current watch statistics
func (fw *FileWatcher) GetStats() WatchStats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()

	return WatchStats{
		EventsProcessed: fw.eventsProcessed,
		ErrorCount:      fw.errorCount,
		LastEventTime:   fw.lastEventTime,
		IsActive:        fw.ctx.Err() == nil,
	}
}

// WatchStats contains statistics about file watching operations
type WatchStats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}
