package symbolgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codenodes/internal/frontend"
	ft "github.com/standardbeagle/codenodes/internal/frontend/frontendtest"
	"github.com/standardbeagle/codenodes/internal/symbols"
)

func TestResolveShapes(t *testing.T) {
	u := ft.NewUnit("types.cpp")
	foo := u.Root().Struct("Foo")
	color := u.Root().Enum("Color")
	alias := u.Root().Typedef("FooPtr", ft.PointerTo(ft.Record(foo)))

	ctx, _ := testContext()
	b := NewBuilder()
	fooH := b.GetOrCreate(ctx, foo)
	colorH := b.GetOrCreate(ctx, color)
	require.NotEqual(t, symbols.NoSymbol, fooH)

	fooT := symbols.UserDefined{Symbol: fooH}

	tests := []struct {
		name string
		in   *ft.Type
		want symbols.TypeIdentifier
	}{
		{"int", ft.Int(), symbols.Int32},
		{"user defined", ft.Record(foo), fooT},
		{"enum", ft.Record(color), symbols.UserDefined{Symbol: colorH}},
		{"const lvalue reference", ft.LRef(ft.Const(ft.Record(foo))), symbols.Reference{Const: true, Kind: symbols.LValue, Referenced: fooT}},
		{"rvalue reference", ft.RRef(ft.Record(foo)), symbols.Reference{Kind: symbols.RValue, Referenced: fooT}},
		{"reference to pointer", ft.LRef(ft.PointerTo(ft.Char())), symbols.Reference{Referenced: symbols.Pointer{Pointee: symbols.Char}}},
		{"pointer chain", ft.PointerTo(ft.PointerTo(ft.PointerTo(ft.Record(foo)))),
			symbols.Pointer{Pointee: symbols.Pointer{Pointee: symbols.Pointer{Pointee: fooT}}}},
		{"pointer to array", ft.PointerTo(ft.ArrayOf(ft.Int(), 8)),
			symbols.Pointer{Pointee: symbols.CArray{Element: symbols.Int32, Size: 8}}},
		{"function pointer", ft.PointerTo(ft.Proto(ft.Bool(), ft.Int(), ft.LRef(ft.Record(foo)))),
			symbols.Pointer{Pointee: symbols.FunctionPrototype{
				Params: []symbols.TypeIdentifier{symbols.Int32, symbols.Reference{Referenced: fooT}},
				Result: symbols.Bool,
			}}},
		{"pointer to function pointer", ft.PointerTo(ft.PointerTo(ft.Proto(ft.Void()))),
			symbols.Pointer{Pointee: symbols.Pointer{Pointee: symbols.FunctionPrototype{
				Params: []symbols.TypeIdentifier{},
				Result: symbols.Void,
			}}}},
		{"array of user", ft.ArrayOf(ft.Record(foo), 3), symbols.CArray{Element: fooT, Size: 3}},
		{"array of array", ft.ArrayOf(ft.ArrayOf(ft.Record(foo), 4), 2),
			symbols.CArray{Element: symbols.CArray{Element: fooT, Size: 4}, Size: 2}},
		{"array of pointers", ft.ArrayOf(ft.PointerTo(ft.Record(foo)), 2),
			symbols.CArray{Element: symbols.Pointer{Pointee: fooT}, Size: 2}},
		{"incomplete array", ft.ArrayOf(ft.Char(), -1), symbols.CArray{Element: symbols.Char, Size: 0}},
		{"typedef stripped", alias, symbols.Pointer{Pointee: fooT}},
		{"unexposed placeholder", ft.Unexposed("std::vector<int>"), symbols.Int32},
		{"member pointer placeholder", ft.MemberPointer(ft.Int()), symbols.Int32},
		{"pointer to member pointer placeholder", ft.PointerTo(ft.MemberPointer(ft.Int())), symbols.Int32},
		{"reference placeholder", ft.LRef(ft.Unexposed("auto")),
			symbols.Reference{Const: true, Kind: symbols.LValue, Referenced: symbols.Int32}},
		{"array element placeholder", ft.ArrayOf(ft.MemberPointer(ft.Int()), 2),
			symbols.CArray{Element: symbols.Int32, Size: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Resolve(ctx, tt.in))
		})
	}

	assert.Equal(t, symbols.Int32, b.Resolve(ctx, nil))
	assert.Equal(t, 6, b.Stats().PlaceholderTypes)
}

func TestResolveCreatesUserDefinedOnDemand(t *testing.T) {
	u := ft.NewUnit("lazy.cpp")
	ns := u.Root().Namespace("net")
	sock := ns.Class("Socket")
	sock.Field("fd", ft.Int())

	ctx, _ := testContext()
	b := NewBuilder()

	got := b.Resolve(ctx, ft.PointerTo(ft.Record(sock)))

	h, ok := b.Forest().Lookup(sock.USR())
	require.True(t, ok)
	assert.Equal(t, symbols.Pointer{Pointee: symbols.UserDefined{Symbol: h}}, got)

	sym := b.Forest().Get(h)
	assert.Equal(t, "net::Socket", sym.DisplayName)
	assert.True(t, sym.Complete())
	assert.Equal(t, []string{"net"}, rootChildren(b))
}

func TestPrimitiveMapping(t *testing.T) {
	tests := []struct {
		kind frontend.TypeKind
		want symbols.Primitive
	}{
		{frontend.TypeVoid, symbols.Void},
		{frontend.TypeBool, symbols.Bool},
		{frontend.TypeCharS, symbols.Char},
		{frontend.TypeCharU, symbols.Char},
		{frontend.TypeWChar, symbols.Char},
		{frontend.TypeChar16, symbols.Char},
		{frontend.TypeSChar, symbols.Int8},
		{frontend.TypeUChar, symbols.UInt8},
		{frontend.TypeShort, symbols.Int16},
		{frontend.TypeUShort, symbols.UInt16},
		{frontend.TypeInt, symbols.Int32},
		{frontend.TypeUInt, symbols.UInt32},
		{frontend.TypeLong, symbols.Int64},
		{frontend.TypeLongLong, symbols.Int64},
		{frontend.TypeULong, symbols.UInt64},
		{frontend.TypeULongLong, symbols.UInt64},
		{frontend.TypeFloat, symbols.Float},
		{frontend.TypeDouble, symbols.Double},
		{frontend.TypeNullPtr, symbols.Nullptr},
		{frontend.TypeLongDouble, symbols.Unknown},
		{frontend.TypeInt128, symbols.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, ok := primitiveOf(tt.kind)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, k := range []frontend.TypeKind{frontend.TypePointer, frontend.TypeRecord, frontend.TypeUnexposed, frontend.TypeConstantArray} {
		_, ok := primitiveOf(k)
		assert.False(t, ok, k.String())
	}
}
