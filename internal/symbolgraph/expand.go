package symbolgraph

import (
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/symbols"
)

// expand runs the kind-specific expansion of sym from cursor c. Symbols
// that are expanding or expanded return immediately; incomplete ones are
// retried. Namespaces are walked once per declaration site instead, since
// a reopened namespace brings new children.
func (s *session) expand(sym *symbols.Symbol, c frontend.Cursor) {
	if ns := sym.AsNamespace(); ns != nil {
		s.expandNamespace(sym, ns, c)
		return
	}

	prev := sym.Progress
	switch prev {
	case symbols.Expanding, symbols.Expanded:
		return
	}
	sym.Progress = symbols.Expanding

	var ok bool
	switch p := sym.Payload.(type) {
	case *symbols.Class:
		ok = s.expandClass(sym, p, c)
	case *symbols.Function:
		ok = s.expandFunction(sym, p, c)
	case *symbols.Enum:
		ok = true
	}

	if ok {
		sym.Progress = symbols.Expanded
		return
	}
	sym.Progress = symbols.Incomplete
	if prev == symbols.NotVisited {
		s.stats.ForwardDeclarations++
	}
}

func (s *session) expandNamespace(sym *symbols.Symbol, ns *symbols.Namespace, c frontend.Cursor) {
	if c.Kind() != frontend.CursorNamespace || !ns.MarkSite(frontend.SiteKey(c)) {
		return
	}
	if sym.Progress != symbols.Expanded {
		sym.Progress = symbols.Expanding
	}
	c.VisitChildren(func(child frontend.Cursor) frontend.ChildVisit {
		return s.visitScopeChild(child, sym.Handle)
	})
	sym.Progress = symbols.Expanded
}

// visitScopeChild handles one child of a namespace or of the translation unit
func (s *session) visitScopeChild(child frontend.Cursor, owner symbols.Handle) frontend.ChildVisit {
	if IsTransparent(child.Kind()) {
		return frontend.VisitRecurse
	}
	s.dispatchScopeChild(child, owner)
	return frontend.VisitContinue
}

func (s *session) dispatchScopeChild(child frontend.Cursor, owner symbols.Handle) symbols.Handle {
	k := child.Kind()
	if kind, ok := symbolKind(k); ok {
		h := s.getOrCreate(child, kind)
		s.attach(owner, h)
		return h
	}

	switch k {
	case frontend.CursorClassTemplate,
		frontend.CursorClassTemplatePartialSpecialization,
		frontend.CursorFunctionTemplate,
		frontend.CursorVarDecl,
		frontend.CursorTypedefDecl,
		frontend.CursorTypeAliasDecl,
		frontend.CursorUsingDirective,
		frontend.CursorUsingDeclaration,
		frontend.CursorNamespaceAlias,
		frontend.CursorStaticAssert:
		s.stats.SkippedDeclarations++
	case frontend.CursorUnexposedDecl:
		s.stats.UnknownDeclarations++
		s.log.Warn("unexposed declaration skipped", "name", child.Spelling(), "at", child.Location())
	default:
		s.stats.UnknownDeclarations++
		s.log.Warn("unrecognized declaration kind in namespace",
			"kind", k, "name", child.Spelling(), "at", child.Location())
	}
	return symbols.NoSymbol
}

// attach appends h to the namespace owner when owner is h's semantic
// parent. Out-of-line definitions of members are not re-parented.
func (s *session) attach(owner, h symbols.Handle) {
	sym := s.forest.Get(h)
	if sym == nil {
		return
	}
	want := owner
	if owner == s.forest.RootHandle() {
		want = symbols.NoSymbol
	}
	if sym.Parent != want {
		return
	}
	if ns := s.forest.Get(owner).AsNamespace(); ns != nil {
		ns.AddChild(h)
	}
}

// expandClass fills the collections of an aggregate from its definition.
// Without a definition the symbol stays a forward declaration.
func (s *session) expandClass(sym *symbols.Symbol, cls *symbols.Class, c frontend.Cursor) bool {
	def := c.Definition()
	if def == nil {
		s.log.Debug("no definition visible, keeping forward declaration",
			"symbol", sym.DisplayName, "at", c.Location())
		return false
	}

	t := canonical(def.Type())
	if t == nil || t.Kind() != frontend.TypeRecord {
		s.log.Warn("aggregate does not have a record type",
			"symbol", sym.DisplayName, "type", typeSpelling(t))
		return false
	}

	cls.Reset()
	def.VisitChildren(func(child frontend.Cursor) frontend.ChildVisit {
		s.visitClassChild(sym, cls, child)
		return frontend.VisitContinue
	})
	return true
}

func (s *session) visitClassChild(sym *symbols.Symbol, cls *symbols.Class, child frontend.Cursor) {
	switch k := child.Kind(); k {
	case frontend.CursorBaseSpecifier:
		cls.ParentClasses = append(cls.ParentClasses, s.resolve(child.Type()))
	case frontend.CursorFieldDecl:
		cls.FieldTypes = append(cls.FieldTypes, s.resolve(child.Type()))
	case frontend.CursorVarDecl, frontend.CursorTypeRef:
		cls.TypeRefs = append(cls.TypeRefs, s.resolve(child.Type()))
	case frontend.CursorEnumDecl:
		if h := s.getOrCreate(child, symbols.KindEnum); s.ownedBy(h, sym) {
			cls.AddInnerEnum(h)
		}
	case frontend.CursorAccessSpecifier,
		frontend.CursorTypedefDecl,
		frontend.CursorTypeAliasDecl,
		frontend.CursorClassTemplate,
		frontend.CursorClassTemplatePartialSpecialization,
		frontend.CursorFunctionTemplate,
		frontend.CursorFriendDecl,
		frontend.CursorUsingDeclaration,
		frontend.CursorStaticAssert,
		frontend.CursorUnexposedAttr:
		s.stats.SkippedDeclarations++
	default:
		switch {
		case k.IsFunction():
			if h := s.getOrCreate(child, symbols.KindFunction); s.ownedBy(h, sym) {
				cls.AddMemberFunction(h)
			}
		case k.IsAggregate():
			if h := s.getOrCreate(child, symbols.KindAggregate); s.ownedBy(h, sym) {
				cls.AddInnerClass(h)
			}
		default:
			s.stats.UnknownDeclarations++
			s.log.Warn("unexpected child of aggregate",
				"symbol", sym.DisplayName, "kind", k, "name", child.Spelling())
		}
	}
}

func (s *session) ownedBy(h symbols.Handle, owner *symbols.Symbol) bool {
	sym := s.forest.Get(h)
	return sym != nil && sym.Parent == owner.Handle
}

// expandFunction resolves the signature. A function whose type exposes no
// argument count stays incomplete. Variadic parameter lists are dropped.
func (s *session) expandFunction(sym *symbols.Symbol, fn *symbols.Function, c frontend.Cursor) bool {
	t := canonical(c.Type())
	if t == nil || t.NumArgs() < 0 {
		s.log.Warn("function type has no callable signature",
			"symbol", sym.DisplayName, "type", typeSpelling(t))
		return false
	}

	fn.Reset()
	result := s.resolve(t.ResultType())

	if t.IsVariadic() {
		s.stats.VariadicFunctions++
		s.log.Warn("variadic function, parameters not recorded", "symbol", sym.DisplayName)
		fn.Variadic = true
		fn.ReturnType = result
		return true
	}

	n := t.NumArgs()
	params := make([]symbols.TypeIdentifier, 0, n)
	for i := 0; i < n; i++ {
		params = append(params, s.resolve(t.Arg(i)))
	}
	fn.ParameterTypes = params
	fn.ReturnType = result
	return true
}
