package watch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/standardbeagle/codenodes/internal/debug"
)

// Rebuild regenerates the graph. changed lists the paths whose events
// triggered it, sorted.
type Rebuild func(ctx context.Context, changed []string) error

// DebouncedRebuilder collapses bursts of file events into one rebuild.
// Rebuilds never overlap.
type DebouncedRebuilder struct {
	rebuild Rebuild

	debounceTime time.Duration
	timer        *time.Timer
	mu           sync.Mutex

	// latest event per path since the last rebuild
	pending map[string]EventType

	// running serializes rebuilds
	running sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Optional callback for test synchronization
	onRebuildComplete func(changed []string, err error)
}

// NewDebouncedRebuilder creates a rebuilder. Rebuilds run with a context
// derived from ctx and stop once Shutdown is called.
func NewDebouncedRebuilder(ctx context.Context, rebuild Rebuild, debounceMs int) *DebouncedRebuilder {
	if debounceMs <= 0 {
		debounceMs = 50
	}
	ctx, cancel := context.WithCancel(ctx)
	return &DebouncedRebuilder{
		rebuild:      rebuild,
		debounceTime: time.Duration(debounceMs) * time.Millisecond,
		pending:      make(map[string]EventType),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ScheduleRebuild records an event and restarts the debounce period
func (dr *DebouncedRebuilder) ScheduleRebuild(path string, ev EventType) {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if dr.ctx.Err() != nil {
		return
	}
	dr.pending[path] = ev
	if dr.timer != nil {
		dr.timer.Stop()
	}
	dr.timer = time.AfterFunc(dr.debounceTime, dr.fire)

	debug.Ctx(dr.ctx).Debug("scheduled rebuild", "path", path, "event", ev, "pending", len(dr.pending))
}

func (dr *DebouncedRebuilder) fire() {
	dr.mu.Lock()
	if dr.ctx.Err() != nil {
		dr.mu.Unlock()
		return
	}
	dr.wg.Add(1)
	dr.mu.Unlock()

	defer dr.wg.Done()
	dr.performRebuild()
}

func (dr *DebouncedRebuilder) performRebuild() {
	dr.running.Lock()
	defer dr.running.Unlock()

	dr.mu.Lock()
	events := dr.pending
	dr.pending = make(map[string]EventType)
	callback := dr.onRebuildComplete
	dr.mu.Unlock()

	if len(events) == 0 {
		return
	}

	changed := make([]string, 0, len(events))
	for path := range events {
		changed = append(changed, path)
	}
	slices.Sort(changed)

	log := debug.Ctx(dr.ctx)
	log.Info("rebuilding", "changed", len(changed))
	start := time.Now()

	err := dr.rebuild(dr.ctx, changed)
	if err != nil {
		log.Error("rebuild failed", "error", err)
	} else {
		log.Info("rebuild complete", "duration", time.Since(start))
	}

	if callback != nil {
		callback(changed, err)
	}
}

// Shutdown cancels pending and running rebuilds and waits for them
func (dr *DebouncedRebuilder) Shutdown() {
	dr.mu.Lock()
	dr.cancel()
	if dr.timer != nil {
		dr.timer.Stop()
	}
	dr.mu.Unlock()

	dr.wg.Wait()
}

// GetPendingCount returns the number of paths waiting for a rebuild
func (dr *DebouncedRebuilder) GetPendingCount() int {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	return len(dr.pending)
}

// ForceRebuild runs a rebuild now for whatever is pending
func (dr *DebouncedRebuilder) ForceRebuild() {
	dr.mu.Lock()
	if dr.timer != nil {
		dr.timer.Stop()
	}
	dr.mu.Unlock()

	dr.performRebuild()
}

// SetOnRebuildComplete sets a callback invoked after every rebuild (for testing)
func (dr *DebouncedRebuilder) SetOnRebuildComplete(callback func(changed []string, err error)) {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	dr.onRebuildComplete = callback
}
