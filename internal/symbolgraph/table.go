package symbolgraph

import (
	"github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/symbols"
)

// getOrCreate returns the symbol of kind want for declaration c.
//
// The unique id is taken from the canonical declaration so a forward
// declaration and its definition land on the same symbol. A new symbol is
// registered before it is expanded, which is what lets self and mutual
// references terminate. An existing symbol is re-expanded, a no-op unless
// it is still incomplete.
func (s *session) getOrCreate(c frontend.Cursor, want symbols.Kind) symbols.Handle {
	if c == nil {
		s.stats.UnresolvedDeclarations++
		s.log.Warn("declaration cursor is missing", "want", want)
		return symbols.NoSymbol
	}

	canon := c.Canonical()
	if canon == nil {
		canon = c
	}
	usr := canon.USR()
	if usr == "" {
		s.stats.UnresolvedDeclarations++
		s.log.Warn("declaration has no unique id",
			"kind", c.Kind(), "name", c.Spelling(), "at", c.Location())
		return symbols.NoSymbol
	}

	if h, ok := s.forest.Lookup(usr); ok {
		return s.existing(h, c, want)
	}

	parent := s.getOrCreateAny(semanticParent(canon))

	// Resolving the parent may have expanded it, and the parent's expansion
	// may already have created this symbol.
	if h, ok := s.forest.Lookup(usr); ok {
		return s.existing(h, c, want)
	}

	sym := s.forest.Insert(usr, canon.DisplayName(), parent, newPayload(want, c))
	s.expand(sym, c)
	return sym.Handle
}

func (s *session) existing(h symbols.Handle, c frontend.Cursor, want symbols.Kind) symbols.Handle {
	sym := s.forest.Get(h)
	if got := sym.Kind(); got != want {
		panic(errors.NewKindMismatchError(sym.USR, want.String(), got.String()))
	}
	s.expand(sym, c)
	return h
}

// getOrCreateAny dispatches on the cursor's kind. Translation units and
// missing cursors quietly yield NoSymbol; other unmapped kinds are reported.
func (s *session) getOrCreateAny(c frontend.Cursor) symbols.Handle {
	if c == nil {
		return symbols.NoSymbol
	}
	kind, ok := symbolKind(c.Kind())
	if !ok {
		switch c.Kind() {
		case frontend.CursorTranslationUnit, frontend.CursorNoDeclFound, frontend.CursorInvalid:
		default:
			s.stats.UnresolvedDeclarations++
			s.log.Warn("declaration kind has no symbol mapping",
				"kind", c.Kind(), "name", c.Spelling(), "at", c.Location())
		}
		return symbols.NoSymbol
	}
	return s.getOrCreate(c, kind)
}

// symbolKind maps a cursor kind onto the symbol kind it creates
func symbolKind(k frontend.CursorKind) (symbols.Kind, bool) {
	switch {
	case k == frontend.CursorNamespace:
		return symbols.KindNamespace, true
	case k == frontend.CursorEnumDecl:
		return symbols.KindEnum, true
	case k.IsAggregate():
		return symbols.KindAggregate, true
	case k.IsFunction():
		return symbols.KindFunction, true
	}
	return 0, false
}

func newPayload(kind symbols.Kind, c frontend.Cursor) symbols.Payload {
	switch kind {
	case symbols.KindNamespace:
		return &symbols.Namespace{}
	case symbols.KindFunction:
		return &symbols.Function{IsMethod: c.Kind().IsMember()}
	case symbols.KindEnum:
		return &symbols.Enum{}
	}

	agg := symbols.AggregateStruct
	switch c.Kind() {
	case frontend.CursorClassDecl:
		agg = symbols.AggregateClass
	case frontend.CursorUnionDecl:
		agg = symbols.AggregateUnion
	}
	return &symbols.Class{Aggregate: agg}
}

// semanticParent returns the enclosing scope of c, skipping wrapper scopes
func semanticParent(c frontend.Cursor) frontend.Cursor {
	p := c.SemanticParent()
	for p != nil && IsTransparent(p.Kind()) {
		p = p.SemanticParent()
	}
	return p
}
