// Package frontendtest builds translation units in memory so the symbol
// graph builder can be tested without a compiler. Cursors are created
// through scope methods (Namespace, Struct, Function, ...) and receive
// clang-like USRs derived from their scope chain.
package frontendtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

// Unit is an in-memory translation unit
type Unit struct {
	file   string
	root   *Cursor
	byUSR  map[string][]*Cursor
	diags  []frontend.Diagnostic
	line   int
	closed bool
}

// NewUnit creates an empty unit for file
func NewUnit(file string) *Unit {
	u := &Unit{file: file, byUSR: make(map[string][]*Cursor)}
	u.root = &Cursor{unit: u, kind: frontend.CursorTranslationUnit, spelling: file, display: file}
	return u
}

// Root returns the translation unit cursor, which is the global scope
func (u *Unit) Root() *Cursor { return u.root }

func (u *Unit) Cursor() frontend.Cursor { return u.root }

func (u *Unit) Diagnostics() []frontend.Diagnostic { return u.diags }

func (u *Unit) Close() { u.closed = true }

// Closed reports whether Close was called
func (u *Unit) Closed() bool { return u.closed }

// Diagnose records a diagnostic at the next free line
func (u *Unit) Diagnose(sev frontend.Severity, msg string) {
	u.line++
	u.diags = append(u.diags, frontend.Diagnostic{
		Severity: sev,
		Location: frontend.Location{File: u.file, Line: u.line, Column: 1},
		Message:  msg,
	})
}

func (u *Unit) register(c *Cursor) {
	if c.usr != "" {
		u.byUSR[c.usr] = append(u.byUSR[c.usr], c)
	}
}

// Cursor is an in-memory declaration
type Cursor struct {
	unit       *Unit
	kind       frontend.CursorKind
	usr        string
	spelling   string
	display    string
	parent     *Cursor
	typ        *Type
	children   []*Cursor
	definition bool
	loc        frontend.Location
}

var _ frontend.Cursor = (*Cursor)(nil)

func (c *Cursor) Kind() frontend.CursorKind { return c.kind }
func (c *Cursor) USR() string               { return c.usr }
func (c *Cursor) Spelling() string          { return c.spelling }
func (c *Cursor) DisplayName() string       { return c.display }
func (c *Cursor) IsDefinition() bool        { return c.definition }
func (c *Cursor) Location() frontend.Location {
	return c.loc
}

func (c *Cursor) Canonical() frontend.Cursor {
	if group := c.unit.byUSR[c.usr]; c.usr != "" && len(group) > 0 {
		return group[0]
	}
	return c
}

func (c *Cursor) Definition() frontend.Cursor {
	if c.usr == "" {
		if c.definition {
			return c
		}
		return nil
	}
	for _, d := range c.unit.byUSR[c.usr] {
		if d.definition {
			return d
		}
	}
	return nil
}

func (c *Cursor) SemanticParent() frontend.Cursor {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *Cursor) Type() frontend.Type {
	if c.typ == nil {
		return nil
	}
	return c.typ
}

func (c *Cursor) VisitChildren(visit func(frontend.Cursor) frontend.ChildVisit) {
	c.visit(visit)
}

func (c *Cursor) visit(visit func(frontend.Cursor) frontend.ChildVisit) bool {
	for _, child := range c.children {
		switch visit(child) {
		case frontend.VisitBreak:
			return false
		case frontend.VisitRecurse:
			if !child.visit(visit) {
				return false
			}
		}
	}
	return true
}

// usrPrefix is the USR of c as a scope. Linkage blocks add nothing.
func (c *Cursor) usrPrefix() string {
	if c.kind == frontend.CursorTranslationUnit {
		return "c:"
	}
	if c.kind == frontend.CursorLinkageSpec {
		return c.parent.usrPrefix()
	}
	return c.usr
}

func (c *Cursor) add(kind frontend.CursorKind, spelling, usr string) *Cursor {
	c.unit.line++
	child := &Cursor{
		unit:     c.unit,
		kind:     kind,
		usr:      usr,
		spelling: spelling,
		display:  spelling,
		parent:   c,
		loc:      frontend.Location{File: c.unit.file, Line: c.unit.line, Column: 1},
	}
	c.children = append(c.children, child)
	c.unit.register(child)
	return child
}

// Namespace opens a namespace. Calling it twice with the same name models a
// reopened namespace: same USR, different site.
func (c *Cursor) Namespace(name string) *Cursor {
	ns := c.add(frontend.CursorNamespace, name, c.usrPrefix()+"@N@"+name)
	ns.definition = true
	return ns
}

// Linkage opens an extern "C" block
func (c *Cursor) Linkage() *Cursor {
	return c.add(frontend.CursorLinkageSpec, "", "")
}

func (c *Cursor) record(kind frontend.CursorKind, tag, name string, definition bool) *Cursor {
	rec := c.add(kind, name, c.usrPrefix()+tag+name)
	rec.definition = definition
	rec.typ = Record(rec)
	return rec
}

// Struct defines a struct
func (c *Cursor) Struct(name string) *Cursor {
	return c.record(frontend.CursorStructDecl, "@S@", name, true)
}

// ForwardStruct declares a struct without defining it
func (c *Cursor) ForwardStruct(name string) *Cursor {
	return c.record(frontend.CursorStructDecl, "@S@", name, false)
}

// Class defines a class
func (c *Cursor) Class(name string) *Cursor {
	return c.record(frontend.CursorClassDecl, "@S@", name, true)
}

// ForwardClass declares a class without defining it
func (c *Cursor) ForwardClass(name string) *Cursor {
	return c.record(frontend.CursorClassDecl, "@S@", name, false)
}

// Union defines a union
func (c *Cursor) Union(name string) *Cursor {
	return c.record(frontend.CursorUnionDecl, "@U@", name, true)
}

// Enum defines an enum
func (c *Cursor) Enum(name string) *Cursor {
	return c.record(frontend.CursorEnumDecl, "@E@", name, true)
}

func (c *Cursor) function(kind frontend.CursorKind, name string, result *Type, params []*Type) *Cursor {
	spellings := make([]string, len(params))
	for i, p := range params {
		spellings[i] = p.spelling
	}
	sig := strings.Join(spellings, ", ")
	fn := c.add(kind, name, c.usrPrefix()+"@F@"+name+"#"+strings.Join(spellings, ",")+"#")
	fn.display = name + "(" + sig + ")"
	fn.typ = Proto(result, params...)
	for i, p := range params {
		arg := fn.add(frontend.CursorParmDecl, fmt.Sprintf("p%d", i), "")
		arg.typ = p
	}
	return fn
}

// Function declares a free function
func (c *Cursor) Function(name string, result *Type, params ...*Type) *Cursor {
	return c.function(frontend.CursorFunctionDecl, name, result, params)
}

// Method declares a member function
func (c *Cursor) Method(name string, result *Type, params ...*Type) *Cursor {
	return c.function(frontend.CursorCXXMethod, name, result, params)
}

// Constructor declares a constructor named after the enclosing record
func (c *Cursor) Constructor(params ...*Type) *Cursor {
	return c.function(frontend.CursorConstructor, c.spelling, Void(), params)
}

// Destructor declares a destructor
func (c *Cursor) Destructor() *Cursor {
	return c.function(frontend.CursorDestructor, "~"+c.spelling, Void(), nil)
}

// Field declares a data member
func (c *Cursor) Field(name string, t *Type) *Cursor {
	f := c.add(frontend.CursorFieldDecl, name, "")
	f.typ = t
	return f
}

// Var declares a variable or static data member
func (c *Cursor) Var(name string, t *Type) *Cursor {
	v := c.add(frontend.CursorVarDecl, name, c.usrPrefix()+"@"+name)
	v.typ = t
	return v
}

// Base adds a base class specifier
func (c *Cursor) Base(t *Type) *Cursor {
	b := c.add(frontend.CursorBaseSpecifier, t.spelling, "")
	b.typ = t
	return b
}

// Typedef declares an alias and returns the alias type
func (c *Cursor) Typedef(name string, underlying *Type) *Type {
	td := c.add(frontend.CursorTypedefDecl, name, c.usrPrefix()+"@T@"+name)
	td.typ = underlying
	return &Type{kind: frontend.TypeTypedef, spelling: name, decl: td, canonical: underlying}
}

// Decl adds a cursor of an arbitrary kind with no USR
func (c *Cursor) Decl(kind frontend.CursorKind, name string) *Cursor {
	return c.add(kind, name, "")
}

// Define marks c as a definition
func (c *Cursor) Define() *Cursor {
	c.definition = true
	return c
}

// SetType replaces the type of c
func (c *Cursor) SetType(t *Type) *Cursor {
	c.typ = t
	return c
}

// WithUSR re-registers c under usr
func (c *Cursor) WithUSR(usr string) *Cursor {
	if group := c.unit.byUSR[c.usr]; c.usr != "" {
		for i, d := range group {
			if d == c {
				c.unit.byUSR[c.usr] = append(group[:i], group[i+1:]...)
				break
			}
		}
	}
	c.usr = usr
	c.unit.register(c)
	return c
}

// Frontend serves prepared units by file name
type Frontend struct {
	mu       sync.Mutex
	units    map[string]*Unit
	failures map[string]error
	parsed   []string
}

var _ frontend.Frontend = (*Frontend)(nil)

// NewFrontend creates a front-end serving units
func NewFrontend(units ...*Unit) *Frontend {
	f := &Frontend{units: make(map[string]*Unit), failures: make(map[string]error)}
	for _, u := range units {
		f.units[u.file] = u
	}
	return f
}

// Fail makes Parse of file return err
func (f *Frontend) Fail(file string, err error) *Frontend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[file] = err
	return f
}

func (f *Frontend) Parse(ctx context.Context, file string, args []string) (frontend.TranslationUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.parsed = append(f.parsed, file)

	if err := f.failures[file]; err != nil {
		return nil, err
	}
	u, ok := f.units[file]
	if !ok {
		return nil, fmt.Errorf("no translation unit for %s", file)
	}
	return u, nil
}

// Parsed lists the files Parse was called with, in call order
func (f *Frontend) Parsed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.parsed...)
}
