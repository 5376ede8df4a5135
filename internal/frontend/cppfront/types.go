package cppfront

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

// ctype is a type descriptor. Values are never mutated after construction;
// qualifier changes make copies.
type ctype struct {
	kind    frontend.TypeKind
	name    string
	isConst bool

	pointee  *ctype // pointers and references
	elem     *ctype // arrays
	size     int64
	result   *ctype // function prototypes
	args     []*ctype
	variadic bool

	// underlying is the aliased type of a typedef
	underlying *ctype
	// decl is the record or enum declaration
	decl *cursor
}

var _ frontend.Type = (*ctype)(nil)

func (t *ctype) Kind() frontend.TypeKind { return t.kind }
func (t *ctype) IsConst() bool           { return t.isConst }
func (t *ctype) IsVariadic() bool        { return t.variadic }
func (t *ctype) Spelling() string        { return spell(t, false) }

// Canonical strips typedefs, carrying a const qualifier over to the
// aliased type.
func (t *ctype) Canonical() frontend.Type {
	return t.canonical()
}

func (t *ctype) canonical() *ctype {
	c := t
	for c.kind == frontend.TypeTypedef && c.underlying != nil {
		u := c.underlying
		if c.isConst && !u.isConst {
			u = u.withConst()
		}
		c = u
	}
	return c
}

func (t *ctype) Pointee() frontend.Type {
	switch t.kind {
	case frontend.TypePointer, frontend.TypeLValueReference, frontend.TypeRValueReference, frontend.TypeMemberPointer:
		return orNil(t.pointee)
	}
	return nil
}

func (t *ctype) ElementType() frontend.Type {
	if t.kind.IsArray() {
		return orNil(t.elem)
	}
	return nil
}

func (t *ctype) ArraySize() int64 {
	if t.kind == frontend.TypeConstantArray {
		return t.size
	}
	return -1
}

func (t *ctype) ResultType() frontend.Type {
	if t.kind.IsFunction() {
		return orNil(t.result)
	}
	return nil
}

func (t *ctype) NumArgs() int {
	if t.kind != frontend.TypeFunctionProto {
		return -1
	}
	return len(t.args)
}

func (t *ctype) Arg(i int) frontend.Type {
	if t.kind != frontend.TypeFunctionProto || i < 0 || i >= len(t.args) {
		return nil
	}
	return t.args[i]
}

func (t *ctype) Declaration() frontend.Cursor {
	if (t.kind == frontend.TypeRecord || t.kind == frontend.TypeEnum) && t.decl != nil {
		return t.decl
	}
	return nil
}

func orNil(t *ctype) frontend.Type {
	if t == nil {
		return nil
	}
	return t
}

func (t *ctype) withConst() *ctype {
	c := *t
	c.isConst = true
	return &c
}

func pointerTo(t *ctype) *ctype {
	return &ctype{kind: frontend.TypePointer, pointee: t}
}

func referenceTo(t *ctype, rvalue bool) *ctype {
	kind := frontend.TypeLValueReference
	if rvalue {
		kind = frontend.TypeRValueReference
	}
	return &ctype{kind: kind, pointee: t}
}

func arrayOf(t *ctype, size int64, known bool) *ctype {
	switch {
	case known:
		return &ctype{kind: frontend.TypeConstantArray, elem: t, size: size}
	case size == 0:
		return &ctype{kind: frontend.TypeIncompleteArray, elem: t, size: -1}
	}
	return &ctype{kind: frontend.TypeVariableArray, elem: t, size: -1}
}

func prototype(result *ctype, args []*ctype, variadic bool) *ctype {
	return &ctype{kind: frontend.TypeFunctionProto, result: result, args: args, variadic: variadic}
}

func recordType(decl *cursor) *ctype {
	kind := frontend.TypeRecord
	if decl.kind == frontend.CursorEnumDecl {
		kind = frontend.TypeEnum
	}
	return &ctype{kind: kind, name: decl.qualified, decl: decl}
}

func typedefType(name string, underlying *ctype) *ctype {
	return &ctype{kind: frontend.TypeTypedef, name: name, underlying: underlying}
}

func unexposed(spelling string) *ctype {
	return &ctype{kind: frontend.TypeUnexposed, name: spelling}
}

// decay applies the parameter adjustments: arrays become pointers to their
// element and functions become function pointers.
func decay(t *ctype) *ctype {
	c := t.canonical()
	switch {
	case c.kind.IsArray():
		return pointerTo(c.elem)
	case c.kind.IsFunction():
		return pointerTo(t)
	}
	return t
}

// spell renders a type the way clang prints it. With canonical set,
// typedefs are replaced by what they alias.
func spell(t *ctype, canonical bool) string {
	if t == nil {
		return "<null>"
	}
	if canonical && t.kind == frontend.TypeTypedef && t.underlying != nil {
		return spell(t.canonical(), true)
	}

	switch t.kind {
	case frontend.TypePointer, frontend.TypeMemberPointer:
		if p := t.pointee; p != nil && p.canonical().kind.IsFunction() {
			fn := p.canonical()
			return spell(fn.result, canonical) + " (*)(" + spellArgs(fn, canonical, ", ") + ")"
		}
		s := spell(t.pointee, canonical) + " *"
		if t.isConst {
			s += "const"
		}
		return s
	case frontend.TypeLValueReference:
		return spell(t.pointee, canonical) + " &"
	case frontend.TypeRValueReference:
		return spell(t.pointee, canonical) + " &&"
	case frontend.TypeConstantArray:
		return spell(t.elem, canonical) + " [" + strconv.FormatInt(t.size, 10) + "]"
	case frontend.TypeIncompleteArray, frontend.TypeVariableArray:
		return spell(t.elem, canonical) + " []"
	case frontend.TypeFunctionProto:
		return spell(t.result, canonical) + " (" + spellArgs(t, canonical, ", ") + ")"
	}

	if t.isConst {
		return "const " + t.name
	}
	return t.name
}

func spellArgs(fn *ctype, canonical bool, sep string) string {
	parts := make([]string, 0, len(fn.args)+1)
	for _, a := range fn.args {
		parts = append(parts, spell(a, canonical))
	}
	if fn.variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, sep)
}

var builtinSpelling = map[frontend.TypeKind]string{
	frontend.TypeVoid:       "void",
	frontend.TypeBool:       "bool",
	frontend.TypeCharS:      "char",
	frontend.TypeSChar:      "signed char",
	frontend.TypeUChar:      "unsigned char",
	frontend.TypeWChar:      "wchar_t",
	frontend.TypeChar8:      "char8_t",
	frontend.TypeChar16:     "char16_t",
	frontend.TypeChar32:     "char32_t",
	frontend.TypeShort:      "short",
	frontend.TypeUShort:     "unsigned short",
	frontend.TypeInt:        "int",
	frontend.TypeUInt:       "unsigned int",
	frontend.TypeLong:       "long",
	frontend.TypeULong:      "unsigned long",
	frontend.TypeLongLong:   "long long",
	frontend.TypeULongLong:  "unsigned long long",
	frontend.TypeInt128:     "__int128",
	frontend.TypeUInt128:    "unsigned __int128",
	frontend.TypeHalf:       "__fp16",
	frontend.TypeFloat:      "float",
	frontend.TypeDouble:     "double",
	frontend.TypeLongDouble: "long double",
	frontend.TypeFloat128:   "__float128",
	frontend.TypeNullPtr:    "std::nullptr_t",
}

// fixedWidth maps the <stdint.h>/<stddef.h> names tree-sitter treats as
// primitive types onto the builtin they alias on LP64 targets.
var fixedWidth = map[string]frontend.TypeKind{
	"int8_t":      frontend.TypeSChar,
	"uint8_t":     frontend.TypeUChar,
	"int16_t":     frontend.TypeShort,
	"uint16_t":    frontend.TypeUShort,
	"int32_t":     frontend.TypeInt,
	"uint32_t":    frontend.TypeUInt,
	"int64_t":     frontend.TypeLong,
	"uint64_t":    frontend.TypeULong,
	"size_t":      frontend.TypeULong,
	"ssize_t":     frontend.TypeLong,
	"ptrdiff_t":   frontend.TypeLong,
	"intptr_t":    frontend.TypeLong,
	"uintptr_t":   frontend.TypeULong,
	"nullptr_t":   frontend.TypeNullPtr,
	"char8_t":     frontend.TypeChar8,
	"char16_t":    frontend.TypeChar16,
	"char32_t":    frontend.TypeChar32,
	"wchar_t":     frontend.TypeWChar,
	"max_align_t": frontend.TypeLongDouble,
}

func builtin(kind frontend.TypeKind) *ctype {
	return &ctype{kind: kind, name: builtinSpelling[kind]}
}

// builtinFromWords maps a builtin type written as specifier words, such as
// "unsigned long long int", onto its kind.
func builtinFromWords(words []string) (*ctype, bool) {
	var unsigned, signed, short bool
	long := 0
	base := ""
	for _, w := range words {
		switch w {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "short":
			short = true
		case "long":
			long++
		case "const", "volatile", "":
		default:
			base = w
		}
	}

	if k, ok := fixedWidth[base]; ok {
		return builtin(k), true
	}

	var kind frontend.TypeKind
	switch base {
	case "void":
		kind = frontend.TypeVoid
	case "bool", "_Bool":
		kind = frontend.TypeBool
	case "char":
		switch {
		case unsigned:
			kind = frontend.TypeUChar
		case signed:
			kind = frontend.TypeSChar
		default:
			kind = frontend.TypeCharS
		}
	case "float":
		kind = frontend.TypeFloat
	case "double":
		kind = frontend.TypeDouble
		if long > 0 {
			kind = frontend.TypeLongDouble
		}
	case "__int128":
		kind = frontend.TypeInt128
		if unsigned {
			kind = frontend.TypeUInt128
		}
	case "__fp16", "_Float16":
		kind = frontend.TypeHalf
	case "__float128", "_Float128":
		kind = frontend.TypeFloat128
	case "", "int":
		if base == "" && !unsigned && !signed && !short && long == 0 {
			return nil, false
		}
		switch {
		case short && unsigned:
			kind = frontend.TypeUShort
		case short:
			kind = frontend.TypeShort
		case long >= 2 && unsigned:
			kind = frontend.TypeULongLong
		case long >= 2:
			kind = frontend.TypeLongLong
		case long == 1 && unsigned:
			kind = frontend.TypeULong
		case long == 1:
			kind = frontend.TypeLong
		case unsigned:
			kind = frontend.TypeUInt
		default:
			kind = frontend.TypeInt
		}
	default:
		return nil, false
	}
	return builtin(kind), true
}
