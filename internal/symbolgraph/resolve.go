package symbolgraph

import (
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/symbols"
)

// resolve turns t into a TypeIdentifier. It is total: anything it cannot
// classify becomes an int32 placeholder and is logged.
func (s *session) resolve(t frontend.Type) symbols.TypeIdentifier {
	t = canonical(t)
	if t != nil {
		if t.Kind().IsReference() {
			return s.resolveReference(t)
		}
		if nr, ok := s.resolveNonReference(t); ok {
			return nr
		}
	}
	s.placeholder(t, "unresolved type, using int32")
	return symbols.Int32
}

// resolveReference wraps the referenced type. A referenced type that is
// neither a pointer nor concrete becomes const int32&.
func (s *session) resolveReference(t frontend.Type) symbols.Reference {
	kind := symbols.LValue
	if t.Kind() == frontend.TypeRValueReference {
		kind = symbols.RValue
	}

	if pointee := canonical(t.Pointee()); pointee != nil {
		if nr, ok := s.resolveNonReference(pointee); ok {
			return symbols.Reference{Const: pointee.IsConst(), Kind: kind, Referenced: nr}
		}
	}

	s.placeholder(t, "unresolved reference, using const int32&")
	return symbols.Reference{Const: true, Kind: kind, Referenced: symbols.Int32}
}

func (s *session) resolveNonReference(t frontend.Type) (symbols.NonReference, bool) {
	if t.Kind() == frontend.TypePointer {
		return s.resolvePointer(t)
	}
	return s.resolveConcrete(t)
}

// resolvePointer classifies the pointee as, in order, another pointer, a
// concrete type or a function prototype.
func (s *session) resolvePointer(t frontend.Type) (symbols.Pointer, bool) {
	pointee := canonical(t.Pointee())
	if pointee == nil {
		s.log.Warn("pointer without pointee", "type", t.Spelling())
		return symbols.Pointer{}, false
	}

	if pointee.Kind() == frontend.TypePointer {
		inner, ok := s.resolvePointer(pointee)
		if !ok {
			return symbols.Pointer{}, false
		}
		return symbols.Pointer{Pointee: inner}, true
	}
	if c, ok := s.resolveConcrete(pointee); ok {
		return symbols.Pointer{Pointee: c}, true
	}
	if pointee.Kind().IsFunction() {
		return symbols.Pointer{Pointee: s.resolvePrototype(pointee)}, true
	}

	s.log.Warn("unsupported pointee",
		"type", t.Spelling(), "pointee", pointee.Spelling(), "kind", pointee.Kind())
	return symbols.Pointer{}, false
}

func (s *session) resolvePrototype(t frontend.Type) symbols.FunctionPrototype {
	n := max(t.NumArgs(), 0)
	proto := symbols.FunctionPrototype{Params: make([]symbols.TypeIdentifier, 0, n)}
	for i := 0; i < n; i++ {
		proto.Params = append(proto.Params, s.resolve(t.Arg(i)))
	}
	proto.Result = s.resolve(t.ResultType())
	return proto
}

// resolveConcrete tries a primitive, then an array, then a user-defined type
func (s *session) resolveConcrete(t frontend.Type) (symbols.Concrete, bool) {
	if p, ok := primitiveOf(t.Kind()); ok {
		return p, true
	}
	if t.Kind().IsArray() {
		return s.resolveArray(t), true
	}
	if u, ok := s.resolveUserDefined(t); ok {
		return u, true
	}
	return nil, false
}

func (s *session) resolveUserDefined(t frontend.Type) (symbols.UserDefined, bool) {
	decl := t.Declaration()
	if decl == nil {
		return symbols.UserDefined{}, false
	}
	h := s.getOrCreateAny(decl)
	if h == symbols.NoSymbol {
		return symbols.UserDefined{}, false
	}
	return symbols.UserDefined{Symbol: h}, true
}

func (s *session) resolveArray(t frontend.Type) symbols.CArray {
	size := t.ArraySize()
	if size < 0 {
		size = 0
	}
	return symbols.CArray{Element: s.resolveArrayElement(canonical(t.ElementType())), Size: size}
}

// resolveArrayElement handles the element shapes an array may hold. An
// element that fits none of them becomes an int32 placeholder.
func (s *session) resolveArrayElement(elem frontend.Type) symbols.ArrayElement {
	if elem != nil {
		if p, ok := primitiveOf(elem.Kind()); ok {
			return p
		}
		if u, ok := s.resolveUserDefined(elem); ok {
			return u
		}
		if elem.Kind() == frontend.TypePointer {
			if p, ok := s.resolvePointer(elem); ok {
				return p
			}
		}
		if elem.Kind().IsArray() {
			return s.resolveArray(elem)
		}
	}
	s.placeholder(elem, "unresolved array element, using int32")
	return symbols.Int32
}

func (s *session) placeholder(t frontend.Type, msg string) {
	s.stats.PlaceholderTypes++
	kind := frontend.TypeInvalid
	if t != nil {
		kind = t.Kind()
	}
	s.log.Warn(msg, "type", typeSpelling(t), "kind", kind)
}

// primitiveOf maps builtin kinds onto the closed Primitive set. Builtins
// with no counterpart (long double, __int128, half) map to Unknown.
func primitiveOf(k frontend.TypeKind) (symbols.Primitive, bool) {
	switch k {
	case frontend.TypeVoid:
		return symbols.Void, true
	case frontend.TypeBool:
		return symbols.Bool, true
	case frontend.TypeCharS, frontend.TypeCharU, frontend.TypeWChar,
		frontend.TypeChar8, frontend.TypeChar16, frontend.TypeChar32:
		return symbols.Char, true
	case frontend.TypeSChar:
		return symbols.Int8, true
	case frontend.TypeUChar:
		return symbols.UInt8, true
	case frontend.TypeShort:
		return symbols.Int16, true
	case frontend.TypeUShort:
		return symbols.UInt16, true
	case frontend.TypeInt:
		return symbols.Int32, true
	case frontend.TypeUInt:
		return symbols.UInt32, true
	case frontend.TypeLong, frontend.TypeLongLong:
		return symbols.Int64, true
	case frontend.TypeULong, frontend.TypeULongLong:
		return symbols.UInt64, true
	case frontend.TypeFloat:
		return symbols.Float, true
	case frontend.TypeDouble:
		return symbols.Double, true
	case frontend.TypeNullPtr:
		return symbols.Nullptr, true
	case frontend.TypeLongDouble, frontend.TypeHalf, frontend.TypeFloat128,
		frontend.TypeInt128, frontend.TypeUInt128:
		return symbols.Unknown, true
	}
	return 0, false
}

func canonical(t frontend.Type) frontend.Type {
	if t == nil {
		return nil
	}
	if c := t.Canonical(); c != nil {
		return c
	}
	return t
}

func typeSpelling(t frontend.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.Spelling()
}
