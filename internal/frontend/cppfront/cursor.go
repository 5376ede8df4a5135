package cppfront

import (
	"github.com/standardbeagle/codenodes/internal/frontend"
)

// cursor is a declaration built from the syntax tree. The tree itself is
// released once a file has been walked.
type cursor struct {
	u        *unit
	kind     frontend.CursorKind
	usr      string
	spelling string
	display  string
	// qualified is the scope-qualified name used in type spellings
	qualified  string
	parent     *cursor
	children   []*cursor
	typ        *ctype
	loc        frontend.Location
	definition bool
}

var _ frontend.Cursor = (*cursor)(nil)

func (c *cursor) Kind() frontend.CursorKind   { return c.kind }
func (c *cursor) USR() string                 { return c.usr }
func (c *cursor) Spelling() string            { return c.spelling }
func (c *cursor) DisplayName() string         { return c.display }
func (c *cursor) IsDefinition() bool          { return c.definition }
func (c *cursor) Location() frontend.Location { return c.loc }

// Canonical is the first declaration of the entity seen in the unit
func (c *cursor) Canonical() frontend.Cursor {
	if group := c.u.byUSR[c.usr]; c.usr != "" && len(group) > 0 {
		return group[0]
	}
	return c
}

// Definition is the first declaration with a body, if the unit has one
func (c *cursor) Definition() frontend.Cursor {
	if c.usr == "" {
		if c.definition {
			return c
		}
		return nil
	}
	for _, d := range c.u.byUSR[c.usr] {
		if d.definition {
			return d
		}
	}
	return nil
}

func (c *cursor) SemanticParent() frontend.Cursor {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *cursor) Type() frontend.Type {
	if c.typ == nil {
		return nil
	}
	return c.typ
}

func (c *cursor) VisitChildren(visit func(frontend.Cursor) frontend.ChildVisit) {
	c.visit(visit)
}

func (c *cursor) visit(visit func(frontend.Cursor) frontend.ChildVisit) bool {
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

func (c *cursor) add(child *cursor) {
	c.children = append(c.children, child)
}

// usrPrefix is the USR that children of c extend
func (c *cursor) usrPrefix() string {
	if c == nil || c.kind == frontend.CursorTranslationUnit || c.usr == "" {
		return "c:"
	}
	return c.usr
}

// qualify joins c's qualified name with name
func (c *cursor) qualify(name string) string {
	if c == nil || c.kind == frontend.CursorTranslationUnit || c.qualified == "" {
		return name
	}
	return c.qualified + "::" + name
}

// isRecord reports class, struct and union cursors
func (c *cursor) isRecord() bool {
	return c != nil && c.kind.IsAggregate()
}
