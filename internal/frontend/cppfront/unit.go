package cppfront

import (
	"slices"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

const anonymousNamespace = "(anonymous namespace)"

// unit is one translation unit: the main file plus everything it includes
type unit struct {
	file   string
	root   *cursor
	global *scope
	byUSR  map[string][]*cursor
	diags  []frontend.Diagnostic

	namespaces map[string]*scope
	classes    map[string]*scope

	// known type names, for spelling suggestions
	known    map[string]struct{}
	reported map[string]struct{}
	closed   bool
}

var _ frontend.TranslationUnit = (*unit)(nil)

func newUnit(file string) *unit {
	u := &unit{
		file:       file,
		byUSR:      make(map[string][]*cursor),
		namespaces: make(map[string]*scope),
		classes:    make(map[string]*scope),
		known:      make(map[string]struct{}),
		reported:   make(map[string]struct{}),
	}
	u.root = &cursor{
		u:        u,
		kind:     frontend.CursorTranslationUnit,
		spelling: file,
		display:  file,
		loc:      frontend.Location{File: file, Line: 1, Column: 1},
	}
	u.global = newScope(nil, u.root)
	return u
}

func (u *unit) Cursor() frontend.Cursor { return u.root }

func (u *unit) Diagnostics() []frontend.Diagnostic { return u.diags }

// Close drops the lookup tables. Cursors stay readable.
func (u *unit) Close() {
	u.closed = true
	u.namespaces = nil
	u.classes = nil
	u.known = nil
	u.reported = nil
}

func (u *unit) topLevel() declCtx {
	return declCtx{lexical: u.root, owner: u.root, scope: u.global}
}

func (u *unit) diagnose(sev frontend.Severity, loc frontend.Location, msg string) {
	u.diags = append(u.diags, frontend.Diagnostic{Severity: sev, Location: loc, Message: msg})
}

func (u *unit) register(c *cursor) {
	if c.usr != "" {
		u.byUSR[c.usr] = append(u.byUSR[c.usr], c)
	}
}

func (u *unit) addKnown(name string) {
	if name != "" {
		u.known[name] = struct{}{}
	}
}

// knownNames returns the known type names in a stable order
func (u *unit) knownNames() []string {
	names := make([]string, 0, len(u.known))
	for n := range u.known {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// namespaceScope returns the shared scope of a namespace so that reopened
// namespaces see each other's names.
func (u *unit) namespaceScope(ns *cursor, parent *scope) *scope {
	if s, ok := u.namespaces[ns.usr]; ok {
		return s
	}
	s := newScope(parent, ns)
	u.namespaces[ns.usr] = s
	return s
}

func (u *unit) classScope(rec *cursor, parent *scope) *scope {
	if s, ok := u.classes[rec.usr]; ok {
		return s
	}
	s := newScope(parent, rec)
	u.classes[rec.usr] = s
	return s
}

// scopeOf returns the scope named by a lookup result, if it names one
func (u *unit) scopeOf(e *entry) *scope {
	switch {
	case e == nil:
		return nil
	case e.ns != nil:
		return e.ns
	case e.decl != nil:
		return u.classes[e.decl.usr]
	case e.alias != nil:
		if t := e.alias.canonical(); t.decl != nil {
			return u.classes[t.decl.usr]
		}
	}
	return nil
}
