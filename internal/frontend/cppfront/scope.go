package cppfront

// entry is what a name in a scope refers to
type entry struct {
	// decl is a class, struct, union or enum declaration
	decl *cursor
	// alias is the type a typedef or alias declaration names
	alias *ctype
	// ns is a namespace, or the target of a namespace alias
	ns *scope
	// template names are known but never resolved to a type
	template bool
}

// scope is a lexical name table. Namespaces and classes keep one scope per
// entity, shared by every place that reopens them.
type scope struct {
	parent *scope
	owner  *cursor
	names  map[string]*entry
	// using holds namespaces made visible by using-directives and inline
	// or anonymous namespaces
	using []*scope
}

func newScope(parent *scope, owner *cursor) *scope {
	return &scope{parent: parent, owner: owner, names: make(map[string]*entry)}
}

func (s *scope) slot(name string) *entry {
	e, ok := s.names[name]
	if !ok {
		e = &entry{}
		s.names[name] = e
	}
	return e
}

// declare records a class or enum. The first declaration wins so the entry
// keeps pointing at the canonical cursor.
func (s *scope) declare(name string, decl *cursor) {
	if name == "" {
		return
	}
	if e := s.slot(name); e.decl == nil {
		e.decl = decl
	}
}

func (s *scope) alias(name string, t *ctype) {
	if name != "" {
		s.slot(name).alias = t
	}
}

func (s *scope) namespace(name string, ns *scope) {
	if name != "" {
		s.slot(name).ns = ns
	}
}

func (s *scope) template(name string) {
	if name != "" {
		s.slot(name).template = true
	}
}

func (s *scope) use(ns *scope) {
	if ns == nil || ns == s {
		return
	}
	for _, u := range s.using {
		if u == ns {
			return
		}
	}
	s.using = append(s.using, ns)
}

// lookup searches s and its enclosing scopes
func (s *scope) lookup(name string) *entry {
	for sc := s; sc != nil; sc = sc.parent {
		if e := sc.local(name, 0); e != nil {
			return e
		}
	}
	return nil
}

// maxUsingDepth bounds chains of using-directives, which may be cyclic
const maxUsingDepth = 8

// local searches s and the namespaces it uses, but not enclosing scopes
func (s *scope) local(name string, depth int) *entry {
	if e, ok := s.names[name]; ok {
		return e
	}
	if depth >= maxUsingDepth {
		return nil
	}
	for _, u := range s.using {
		if e := u.local(name, depth+1); e != nil {
			return e
		}
	}
	return nil
}

// resolve looks up a possibly qualified name. The first component is found
// through enclosing scopes; later components only inside the scope named
// so far.
func (u *unit) resolve(from *scope, parts []string, global bool) *entry {
	if len(parts) == 0 {
		return nil
	}
	start := from
	if global {
		start = u.global
	}

	var e *entry
	if global {
		e = start.local(parts[0], 0)
	} else {
		e = start.lookup(parts[0])
	}
	for _, p := range parts[1:] {
		inner := u.scopeOf(e)
		if inner == nil {
			return nil
		}
		e = inner.local(p, 0)
	}
	return e
}

// resolveScope finds the scope a qualifier such as "a::B" names
func (u *unit) resolveScope(from *scope, parts []string, global bool) *scope {
	if len(parts) == 0 {
		if global {
			return u.global
		}
		return nil
	}
	return u.scopeOf(u.resolve(from, parts, global))
}
