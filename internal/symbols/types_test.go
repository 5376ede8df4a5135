package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// assertCountMatchesGetter checks that NumSymbols equals the number of
// non-null SymbolAt results and that no index past the count yields a symbol.
func assertCountMatchesGetter(t *testing.T, ti TypeIdentifier) []Handle {
	t.Helper()

	n := ti.NumSymbols()
	var got []Handle
	for i := 0; i < n+3; i++ {
		h := ti.SymbolAt(i)
		if i < n {
			assert.NotEqual(t, NoSymbol, h, "index %d inside count must resolve", i)
		} else {
			assert.Equal(t, NoSymbol, h, "index %d past count must be null", i)
		}
		if h != NoSymbol {
			got = append(got, h)
		}
	}
	assert.Equal(t, NoSymbol, ti.SymbolAt(-1))
	assert.Len(t, got, n)
	return got
}

func TestTypeIdentifierSymbolCounting(t *testing.T) {
	a, b, c := UserDefined{Symbol: 10}, UserDefined{Symbol: 20}, UserDefined{Symbol: 30}

	tests := []struct {
		name string
		ti   TypeIdentifier
		want []Handle
	}{
		{"primitive", Int32, nil},
		{"user defined", a, []Handle{10}},
		{"null user defined", UserDefined{}, nil},
		{"pointer to user", Pointer{Pointee: a}, []Handle{10}},
		{"pointer chain", Pointer{Pointee: Pointer{Pointee: Pointer{Pointee: b}}}, []Handle{20}},
		{"array of user", CArray{Element: a, Size: 4}, []Handle{10}},
		{"array of array of pointer", CArray{Element: CArray{Element: Pointer{Pointee: c}, Size: 2}, Size: 3}, []Handle{30}},
		{"const lvalue reference", Reference{Const: true, Referenced: b}, []Handle{20}},
		{"rvalue reference to pointer", Reference{Kind: RValue, Referenced: Pointer{Pointee: a}}, []Handle{10}},
		{
			"function pointer params before result",
			Pointer{Pointee: FunctionPrototype{
				Params: []TypeIdentifier{a, Int8, Reference{Referenced: b}},
				Result: Pointer{Pointee: c},
			}},
			[]Handle{10, 20, 30},
		},
		{
			"function pointer returning function pointer",
			Pointer{Pointee: FunctionPrototype{
				Params: []TypeIdentifier{Pointer{Pointee: FunctionPrototype{Params: []TypeIdentifier{c}, Result: Void}}},
				Result: Pointer{Pointee: FunctionPrototype{Params: []TypeIdentifier{a, b}, Result: a}},
			}},
			[]Handle{30, 10, 20, 10},
		},
		{"prototype without result", FunctionPrototype{Params: []TypeIdentifier{a}}, []Handle{10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assertCountMatchesGetter(t, tt.ti)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrimitiveNames(t *testing.T) {
	assert.Equal(t, "int32", Int32.String())
	assert.Equal(t, "uint64", UInt64.String())
	assert.Equal(t, "nullptr", Nullptr.String())
	assert.Equal(t, "unknown", Primitive(200).String())
}

func TestDescribe(t *testing.T) {
	names := func(h Handle) string {
		return map[Handle]string{1: "ns::Foo", 2: "Bar"}[h]
	}

	tests := []struct {
		ti   TypeIdentifier
		want string
	}{
		{Int32, "int32"},
		{Pointer{Pointee: Pointer{Pointee: Char}}, "char**"},
		{Reference{Const: true, Referenced: UserDefined{Symbol: 1}}, "const ns::Foo&"},
		{Reference{Kind: RValue, Referenced: UserDefined{Symbol: 2}}, "Bar&&"},
		{CArray{Element: CArray{Element: Float, Size: 4}, Size: 0}, "float[4][]"},
		{Pointer{Pointee: FunctionPrototype{Params: []TypeIdentifier{Int32, Double}, Result: Void}}, "void(int32, double)*"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.ti, names))
	}

	assert.Equal(t, "#7", Describe(UserDefined{Symbol: 7}, nil))
	assert.Equal(t, "<none>", Describe(nil, nil))
}
