// Package frontend declares what the symbol graph builder needs from a C/C++
// compiler front-end: translation units, declaration cursors and type
// descriptors. The shape follows libclang's cursor API so any front-end that
// can answer those questions can drive the builder.
package frontend

import (
	"context"
	"fmt"
)

// Frontend turns one source file plus its compiler arguments into a
// translation unit. An error means the file is unparseable; diagnostics for
// a file that did parse are reported through TranslationUnit.Diagnostics.
type Frontend interface {
	Parse(ctx context.Context, file string, args []string) (TranslationUnit, error)
}

// TranslationUnit is a parsed file with everything it includes
type TranslationUnit interface {
	// Cursor returns the translation unit root cursor
	Cursor() Cursor
	Diagnostics() []Diagnostic
	Close()
}

// ChildVisit tells VisitChildren how to continue
type ChildVisit uint8

const (
	// VisitBreak stops the whole traversal
	VisitBreak ChildVisit = iota
	// VisitContinue moves to the next sibling
	VisitContinue
	// VisitRecurse visits the children of the current cursor first
	VisitRecurse
)

// Cursor is one declaration site. Methods that return a Cursor or a Type
// return nil when there is nothing to return.
type Cursor interface {
	Kind() CursorKind
	// USR is the unique id shared by all declarations of one entity
	USR() string
	Spelling() string
	DisplayName() string
	// Canonical is the authoritative declaration among those sharing the USR
	Canonical() Cursor
	// Definition is the defining declaration when the unit contains one
	Definition() Cursor
	IsDefinition() bool
	// SemanticParent is the enclosing scope, or nil for the unit root
	SemanticParent() Cursor
	Type() Type
	VisitChildren(visit func(child Cursor) ChildVisit)
	Location() Location
}

// Type is a type descriptor. Accessors that do not apply to the type's kind
// return nil, -1 or false.
type Type interface {
	Kind() TypeKind
	// Canonical strips typedefs and sugar, keeping qualifiers
	Canonical() Type
	Pointee() Type
	ElementType() Type
	// ArraySize is the declared bound, or -1 when unknown
	ArraySize() int64
	ResultType() Type
	// NumArgs is the parameter count of a function type, or -1
	NumArgs() int
	Arg(i int) Type
	IsVariadic() bool
	IsConst() bool
	Declaration() Cursor
	Spelling() string
}

// Location is a position in a source file. Line and Column are 1-based.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Severity of a diagnostic
type Severity uint8

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return "unknown"
}

// Diagnostic is a non-fatal message produced while parsing
type Diagnostic struct {
	Severity Severity
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// SiteKey identifies the declaration site of c. Reopened namespaces share a
// USR but have distinct site keys.
func SiteKey(c Cursor) string {
	loc := c.Location()
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}
