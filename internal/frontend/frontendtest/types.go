package frontendtest

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

// Type is an in-memory type descriptor
type Type struct {
	kind      frontend.TypeKind
	spelling  string
	isConst   bool
	pointee   *Type
	element   *Type
	size      int64
	result    *Type
	args      []*Type
	variadic  bool
	decl      *Cursor
	canonical *Type
}

var _ frontend.Type = (*Type)(nil)

func (t *Type) Kind() frontend.TypeKind { return t.kind }
func (t *Type) Spelling() string        { return t.spelling }
func (t *Type) IsConst() bool           { return t.isConst }
func (t *Type) IsVariadic() bool        { return t.variadic }

func (t *Type) Canonical() frontend.Type {
	if t.kind != frontend.TypeTypedef || t.canonical == nil {
		return t
	}
	under := t.canonical.Canonical().(*Type)
	if t.isConst && !under.isConst {
		return Const(under)
	}
	return under
}

func (t *Type) Pointee() frontend.Type {
	if t.pointee == nil {
		return nil
	}
	return t.pointee
}

func (t *Type) ElementType() frontend.Type {
	if t.element == nil {
		return nil
	}
	return t.element
}

func (t *Type) ArraySize() int64 {
	if t.kind != frontend.TypeConstantArray {
		return -1
	}
	return t.size
}

func (t *Type) ResultType() frontend.Type {
	if t.result == nil {
		return nil
	}
	return t.result
}

func (t *Type) NumArgs() int {
	switch t.kind {
	case frontend.TypeFunctionProto:
		return len(t.args)
	case frontend.TypeFunctionNoProto:
		return 0
	}
	return -1
}

func (t *Type) Arg(i int) frontend.Type {
	if i < 0 || i >= len(t.args) {
		return nil
	}
	return t.args[i]
}

func (t *Type) Declaration() frontend.Cursor {
	if t.decl == nil {
		return nil
	}
	return t.decl
}

// Builtin returns a builtin type of kind
func Builtin(kind frontend.TypeKind, spelling string) *Type {
	return &Type{kind: kind, spelling: spelling}
}

func Int() *Type    { return Builtin(frontend.TypeInt, "int") }
func Char() *Type   { return Builtin(frontend.TypeCharS, "char") }
func Void() *Type   { return Builtin(frontend.TypeVoid, "void") }
func Bool() *Type   { return Builtin(frontend.TypeBool, "bool") }
func Double() *Type { return Builtin(frontend.TypeDouble, "double") }

// Unexposed returns a type the front-end could not classify
func Unexposed(spelling string) *Type {
	return &Type{kind: frontend.TypeUnexposed, spelling: spelling}
}

// MemberPointer returns a pointer-to-member type, a shape the builder does not model
func MemberPointer(pointee *Type) *Type {
	return &Type{kind: frontend.TypeMemberPointer, spelling: pointee.spelling + " C::*", pointee: pointee}
}

// PointerTo returns t*
func PointerTo(t *Type) *Type {
	return &Type{kind: frontend.TypePointer, spelling: t.spelling + " *", pointee: t}
}

// LRef returns t&
func LRef(t *Type) *Type {
	return &Type{kind: frontend.TypeLValueReference, spelling: t.spelling + " &", pointee: t}
}

// RRef returns t&&
func RRef(t *Type) *Type {
	return &Type{kind: frontend.TypeRValueReference, spelling: t.spelling + " &&", pointee: t}
}

// Const returns a const-qualified copy of t
func Const(t *Type) *Type {
	c := *t
	c.isConst = true
	if !strings.HasPrefix(c.spelling, "const ") {
		c.spelling = "const " + c.spelling
	}
	return &c
}

// ArrayOf returns t[n], or t[] when n is negative
func ArrayOf(t *Type, n int64) *Type {
	if n < 0 {
		return &Type{kind: frontend.TypeIncompleteArray, spelling: t.spelling + " []", element: t, size: -1}
	}
	return &Type{kind: frontend.TypeConstantArray, spelling: t.spelling + " [" + strconv.FormatInt(n, 10) + "]", element: t, size: n}
}

// Record returns the type declared by an aggregate or enum cursor
func Record(decl *Cursor) *Type {
	kind := frontend.TypeRecord
	if decl.kind == frontend.CursorEnumDecl {
		kind = frontend.TypeEnum
	}
	return &Type{kind: kind, spelling: decl.spelling, decl: decl}
}

// Proto returns a function prototype type
func Proto(result *Type, params ...*Type) *Type {
	spellings := make([]string, len(params))
	for i, p := range params {
		spellings[i] = p.spelling
	}
	return &Type{
		kind:     frontend.TypeFunctionProto,
		spelling: result.spelling + " (" + strings.Join(spellings, ", ") + ")",
		result:   result,
		args:     params,
	}
}

// Variadic returns a copy of a prototype that takes trailing varargs
func Variadic(proto *Type) *Type {
	v := *proto
	v.variadic = true
	return &v
}
