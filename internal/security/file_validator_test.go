package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestFileValidator(t *testing.T) {
	validator := NewFileValidator(DefaultMaxSizeKB)

	t.Run("ValidCppFile", func(t *testing.T) {
		content := "#include <vector>\n\nnamespace geo {\nclass Shape { public: virtual ~Shape(); };\n}\n"
		path := writeTempFile(t, "shape.cpp", []byte(content))

		data, err := validator.ReadSource(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeTempFile(t, "empty.h", nil)
		_, err := validator.ReadSource(path)
		assert.NoError(t, err)
	})

	t.Run("ObjectFileNamedAsSource", func(t *testing.T) {
		content := append([]byte{0x7F, 'E', 'L', 'F', 2, 1, 1}, make([]byte, 64)...)
		path := writeTempFile(t, "main.cpp", content)

		_, err := validator.ReadSource(path)
		require.ErrorIs(t, err, ErrBinary)
		assert.Contains(t, err.Error(), "ELF object")
	})

	t.Run("PrecompiledHeader", func(t *testing.T) {
		path := writeTempFile(t, "stdafx.h", []byte("CPCH\x01\x00\x00\x00"))

		_, err := validator.ReadSource(path)
		require.ErrorIs(t, err, ErrBinary)
		assert.Contains(t, err.Error(), "clang precompiled header")
	})

	t.Run("NULBytes", func(t *testing.T) {
		assert.ErrorIs(t, validator.Validate([]byte("int x;\x00int y;")), ErrBinary)
	})

	t.Run("ControlCharacters", func(t *testing.T) {
		assert.ErrorIs(t, validator.Validate([]byte("\x01\x02\x03\x04ab")), ErrBinary)
		assert.NoError(t, validator.Validate([]byte("int\tx;\r\n\f")))
	})

	t.Run("TooLarge", func(t *testing.T) {
		small := NewFileValidator(1)
		path := writeTempFile(t, "big.c", []byte(strings.Repeat("int x;\n", 400)))

		_, err := small.ReadSource(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit is 1 KB")
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := validator.ReadSource(filepath.Join(t.TempDir(), "nope.c"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
