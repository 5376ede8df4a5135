package symbols

import (
	"fmt"
	"strings"
)

// TypeIdentifier describes one use of a C/C++ type. It is a value: a new one
// is built every time a type expression is resolved, and it may point at
// shared symbols through UserDefined leaves.
//
// NumSymbols and SymbolAt enumerate those symbols left to right, with
// parameters before results and outer wrappers before their contents.
type TypeIdentifier interface {
	NumSymbols() int
	SymbolAt(i int) Handle
	sealedType()
}

// NonReference is a Pointer or a Concrete type
type NonReference interface {
	TypeIdentifier
	nonReference()
}

// Concrete is a Primitive, UserDefined or CArray. Every Concrete type may
// also be pointed at.
type Concrete interface {
	NonReference
	concrete()
	pointee()
}

// Pointee is what a Pointer may point at: a Concrete type, another Pointer
// or a FunctionPrototype.
type Pointee interface {
	TypeIdentifier
	pointee()
}

// ArrayElement is what a CArray may hold
type ArrayElement interface {
	TypeIdentifier
	arrayElement()
}

// Primitive is the closed set of builtin types
type Primitive uint8

const (
	Unknown Primitive = iota
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float
	Double
	Bool
	Char
	Nullptr
	Void
)

var primitiveNames = [...]string{
	Unknown: "unknown",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	UInt8:   "uint8",
	UInt16:  "uint16",
	UInt32:  "uint32",
	UInt64:  "uint64",
	Float:   "float",
	Double:  "double",
	Bool:    "bool",
	Char:    "char",
	Nullptr: "nullptr",
	Void:    "void",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "unknown"
}

func (Primitive) NumSymbols() int     { return 0 }
func (Primitive) SymbolAt(int) Handle { return NoSymbol }
func (Primitive) sealedType()         {}
func (Primitive) nonReference()       {}
func (Primitive) concrete()           {}
func (Primitive) pointee()            {}
func (Primitive) arrayElement()       {}

// UserDefined points at a class, struct, union or enum symbol
type UserDefined struct {
	Symbol Handle
}

func (u UserDefined) NumSymbols() int {
	if u.Symbol == NoSymbol {
		return 0
	}
	return 1
}

func (u UserDefined) SymbolAt(i int) Handle {
	if i != 0 {
		return NoSymbol
	}
	return u.Symbol
}

func (UserDefined) sealedType()   {}
func (UserDefined) nonReference() {}
func (UserDefined) concrete()     {}
func (UserDefined) pointee()      {}
func (UserDefined) arrayElement() {}

// CArray is a C array. Size is 0 when the bound is unknown. Nested arrays
// are stored as an Element that is itself a CArray.
type CArray struct {
	Element ArrayElement
	Size    int64
}

func (a CArray) NumSymbols() int {
	if a.Element == nil {
		return 0
	}
	return a.Element.NumSymbols()
}

func (a CArray) SymbolAt(i int) Handle {
	if a.Element == nil {
		return NoSymbol
	}
	return a.Element.SymbolAt(i)
}

func (CArray) sealedType()   {}
func (CArray) nonReference() {}
func (CArray) concrete()     {}
func (CArray) pointee()      {}
func (CArray) arrayElement() {}

// Pointer points at a Concrete type, another Pointer, or a FunctionPrototype
type Pointer struct {
	Pointee Pointee
}

func (p Pointer) NumSymbols() int {
	if p.Pointee == nil {
		return 0
	}
	return p.Pointee.NumSymbols()
}

func (p Pointer) SymbolAt(i int) Handle {
	if p.Pointee == nil {
		return NoSymbol
	}
	return p.Pointee.SymbolAt(i)
}

func (Pointer) sealedType()   {}
func (Pointer) nonReference() {}
func (Pointer) pointee()      {}
func (Pointer) arrayElement() {}

// FunctionPrototype is the signature behind a function pointer
type FunctionPrototype struct {
	Params []TypeIdentifier
	Result TypeIdentifier
}

func (f FunctionPrototype) NumSymbols() int {
	n := countSymbols(f.Params)
	if f.Result != nil {
		n += f.Result.NumSymbols()
	}
	return n
}

func (f FunctionPrototype) SymbolAt(i int) Handle {
	if i < 0 {
		return NoSymbol
	}
	if h, ok := symbolIn(f.Params, &i); ok {
		return h
	}
	if f.Result != nil {
		return f.Result.SymbolAt(i)
	}
	return NoSymbol
}

func (FunctionPrototype) sealedType() {}
func (FunctionPrototype) pointee()    {}

// ReferenceKind distinguishes T& from T&&
type ReferenceKind uint8

const (
	LValue ReferenceKind = iota
	RValue
)

// Reference wraps a NonReference with a reference kind and constness
type Reference struct {
	Const      bool
	Kind       ReferenceKind
	Referenced NonReference
}

func (r Reference) NumSymbols() int {
	if r.Referenced == nil {
		return 0
	}
	return r.Referenced.NumSymbols()
}

func (r Reference) SymbolAt(i int) Handle {
	if r.Referenced == nil {
		return NoSymbol
	}
	return r.Referenced.SymbolAt(i)
}

func (Reference) sealedType() {}

// Describe renders t as C-like text. name maps symbol handles to names; a
// nil name prints handles as #N.
func Describe(t TypeIdentifier, name func(Handle) string) string {
	if name == nil {
		name = func(h Handle) string { return fmt.Sprintf("#%d", h) }
	}
	var b strings.Builder
	describe(&b, t, name)
	return b.String()
}

func describe(b *strings.Builder, t TypeIdentifier, name func(Handle) string) {
	switch v := t.(type) {
	case nil:
		b.WriteString("<none>")
	case Primitive:
		b.WriteString(v.String())
	case UserDefined:
		b.WriteString(name(v.Symbol))
	case CArray:
		describe(b, v.Element, name)
		if v.Size > 0 {
			fmt.Fprintf(b, "[%d]", v.Size)
		} else {
			b.WriteString("[]")
		}
	case Pointer:
		describe(b, v.Pointee, name)
		b.WriteByte('*')
	case FunctionPrototype:
		describe(b, v.Result, name)
		b.WriteString("(")
		for i, p := range v.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			describe(b, p, name)
		}
		b.WriteString(")")
	case Reference:
		if v.Const {
			b.WriteString("const ")
		}
		describe(b, v.Referenced, name)
		if v.Kind == RValue {
			b.WriteString("&&")
		} else {
			b.WriteByte('&')
		}
	}
}

func countSymbols(types []TypeIdentifier) int {
	n := 0
	for _, t := range types {
		n += t.NumSymbols()
	}
	return n
}

// symbolIn resolves *i inside types. When the index falls past the group it
// is reduced by the group's symbol count and ok is false.
func symbolIn(types []TypeIdentifier, i *int) (Handle, bool) {
	for _, t := range types {
		n := t.NumSymbols()
		if *i < n {
			return t.SymbolAt(*i), true
		}
		*i -= n
	}
	return NoSymbol, false
}
