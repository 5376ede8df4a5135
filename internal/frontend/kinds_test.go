package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorKindClassification(t *testing.T) {
	assert.True(t, CursorUnionDecl.IsAggregate())
	assert.False(t, CursorEnumDecl.IsAggregate())

	for _, k := range []CursorKind{CursorFunctionDecl, CursorCXXMethod, CursorConstructor, CursorDestructor, CursorConversionFunction} {
		assert.True(t, k.IsFunction(), k.String())
	}
	assert.False(t, CursorFunctionDecl.IsMember())
	assert.True(t, CursorDestructor.IsMember())
	assert.False(t, CursorFunctionTemplate.IsFunction())

	assert.Equal(t, "LinkageSpec", CursorLinkageSpec.String())
	assert.Equal(t, "Unknown", CursorKind(999).String())
}

func TestTypeKindClassification(t *testing.T) {
	assert.True(t, TypeRValueReference.IsReference())
	assert.False(t, TypePointer.IsReference())
	assert.True(t, TypeIncompleteArray.IsArray())
	assert.True(t, TypeFunctionNoProto.IsFunction())
	assert.True(t, TypeVoid.IsBuiltin())
	assert.True(t, TypeNullPtr.IsBuiltin())
	assert.True(t, TypeLongDouble.IsBuiltin())
	assert.False(t, TypePointer.IsBuiltin())
	assert.False(t, TypeUnexposed.IsBuiltin())
	assert.Equal(t, "Char_S", TypeCharS.String())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityError,
		Location: Location{File: "a.cpp", Line: 3, Column: 7},
		Message:  "expected ';'",
	}
	assert.Equal(t, "a.cpp:3:7: error: expected ';'", d.String())
	assert.Equal(t, "<unknown>", Location{}.String())
}
