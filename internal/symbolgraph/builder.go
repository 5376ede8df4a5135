// Package symbolgraph builds the symbol forest from front-end cursors.
//
// A Builder owns one Forest and serializes every get-or-create, expansion
// and type resolution behind a single mutex. Parse jobs call into it from
// their own goroutines after the (parallel) front-end work is done.
package symbolgraph

import (
	"context"
	"log/slog"
	"sync"

	"github.com/standardbeagle/codenodes/internal/debug"
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/symbols"
)

// Stats counts the anomalies met while building. They never stop a build.
type Stats struct {
	// UnknownDeclarations are declaration kinds with no handling at all
	UnknownDeclarations int
	// SkippedDeclarations are deliberately unmodeled kinds (templates, typedefs, variables)
	SkippedDeclarations int
	// UnresolvedDeclarations are cursors that could not be mapped to a symbol
	UnresolvedDeclarations int
	// PlaceholderTypes are type expressions replaced by an int32 placeholder
	PlaceholderTypes int
	// VariadicFunctions had their parameter lists dropped
	VariadicFunctions int
	// ForwardDeclarations counts symbols whose first expansion ended incomplete
	ForwardDeclarations int
}

// Builder is the shared symbol table of a run
type Builder struct {
	mu     sync.Mutex
	forest *symbols.Forest
	stats  Stats
}

// NewBuilder creates a builder with an empty forest
func NewBuilder() *Builder {
	return &Builder{forest: symbols.NewForest()}
}

// Forest returns the forest being built. Read it only after all jobs that
// use the builder have finished.
func (b *Builder) Forest() *symbols.Forest {
	return b.forest
}

// Stats returns a snapshot of the anomaly counters
func (b *Builder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// VisitTopLevel handles one top-level declaration of a translation unit as
// one critical section. Wrapper cursors such as extern "C" blocks are walked
// through. It returns the symbol created or found, if any.
//
// A declaration whose unique id already belongs to a symbol of another kind
// panics with *errors.KindMismatchError.
func (b *Builder) VisitTopLevel(ctx context.Context, c frontend.Cursor) symbols.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.session(ctx)
	if IsTransparent(c.Kind()) {
		c.VisitChildren(func(child frontend.Cursor) frontend.ChildVisit {
			return s.visitScopeChild(child, b.forest.RootHandle())
		})
		return symbols.NoSymbol
	}
	return s.dispatchScopeChild(c, b.forest.RootHandle())
}

// VisitUnit walks every top-level declaration of root, taking the lock once
// per declaration.
func (b *Builder) VisitUnit(ctx context.Context, root frontend.Cursor) {
	var top []frontend.Cursor
	root.VisitChildren(func(child frontend.Cursor) frontend.ChildVisit {
		top = append(top, child)
		return frontend.VisitContinue
	})
	for _, c := range top {
		b.VisitTopLevel(ctx, c)
	}
}

// GetOrCreate returns the symbol for a declaration of any modeled kind,
// creating and expanding it on first sight. It returns NoSymbol for cursors
// with no symbol mapping.
func (b *Builder) GetOrCreate(ctx context.Context, c frontend.Cursor) symbols.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session(ctx).getOrCreateAny(c)
}

// Resolve turns a type descriptor into a TypeIdentifier. It never fails;
// unrecognized shapes become an int32 placeholder.
func (b *Builder) Resolve(ctx context.Context, t frontend.Type) symbols.TypeIdentifier {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session(ctx).resolve(t)
}

// session is the per-call view of the builder. It exists only while b.mu
// is held.
type session struct {
	b      *Builder
	forest *symbols.Forest
	stats  *Stats
	ctx    context.Context
	log    *slog.Logger
}

func (b *Builder) session(ctx context.Context) *session {
	return &session{
		b:      b,
		forest: b.forest,
		stats:  &b.stats,
		ctx:    ctx,
		log:    debug.Ctx(ctx),
	}
}

// IsTransparent reports scopes that carry no identity of their own and are
// walked through: language linkage blocks and attributes.
func IsTransparent(k frontend.CursorKind) bool {
	return k == frontend.CursorLinkageSpec || k == frontend.CursorUnexposedAttr
}
