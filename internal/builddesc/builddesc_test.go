package builddesc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
)

func TestParse_CommandShape(t *testing.T) {
	data := []byte(`[
		{"directory": "/src", "command": "clang++ -std=c++17 -Iinclude -c main.cpp -o main.o", "file": "main.cpp"}
	]`)

	entries, err := Parse(data, "db.json")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "/src", e.Directory)
	assert.Equal(t, filepath.Join("/src", "main.cpp"), e.File)
	assert.Equal(t, []string{"-std=c++17", "-I" + filepath.Join("/src", "include")}, e.Args)
}

func TestParse_ArgumentsShape(t *testing.T) {
	data := []byte(`[
		{"directory": "/src", "arguments": ["cc", "-DFOO=1", "-I", "/opt/inc", "-c", "a.c"], "file": "/src/a.c", "output": "a.o"}
	]`)

	entries, err := Parse(data, "db.json")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/src/a.c", entries[0].File)
	assert.Equal(t, []string{"-DFOO=1", "-I/opt/inc"}, entries[0].Args)
	assert.Equal(t, "a.o", entries[0].Output)
}

func TestParse_Duplicates(t *testing.T) {
	data := []byte(`[
		{"directory": "/src", "command": "cc -c a.c", "file": "a.c"},
		{"directory": "/src", "arguments": ["cc", "-c", "a.c"], "file": "a.c"},
		{"directory": "/src", "command": "cc -DX -c a.c", "file": "a.c"}
	]`)

	entries, err := Parse(data, "db.json")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "identical file and args collapse")
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		entry int
	}{
		{"malformed json", `{"oops"`, -1},
		{"not an array", `{"file": "a.c"}`, -1},
		{"empty", `[]`, -1},
		{"missing file", `[{"directory": "/", "command": "cc -c a.c", "file": "a.c"}, {"command": "cc"}]`, 1},
		{"missing command", `[{"directory": "/", "file": "a.c"}]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "db.json")
			require.Error(t, err)

			var bde *lcierrors.BuildDescriptionError
			require.True(t, errors.As(err, &bde))
			assert.Equal(t, "db.json", bde.Path)
			assert.Equal(t, tt.entry, bde.Entry)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"directory": "`+dir+`", "command": "g++ -c x.cpp", "file": "x.cpp"}]`), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "x.cpp")}, Files(entries))

	_, err = Load(filepath.Join(dir, "missing.json"))
	var bde *lcierrors.BuildDescriptionError
	require.True(t, errors.As(err, &bde))
	var fe *lcierrors.FileError
	assert.True(t, errors.As(err, &fe))
}

func TestFrontendArgs(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{"bare flags", []string{"-Wall", "-O2"}, []string{"-Wall", "-O2"}},
		{"compiler dropped", []string{"/usr/bin/c++", "-Wall"}, []string{"-Wall"}},
		{"joined output", []string{"cc", "-ofoo.o", "-c", "f.c"}, []string{}},
		{"isystem separate", []string{"cc", "-isystem", "third_party"}, []string{"-isystem" + filepath.Join("/w", "third_party")}},
		{"iquote joined absolute", []string{"cc", "-iquote/abs"}, []string{"-iquote/abs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FrontendArgs(tt.tokens, "f.c", "/w"))
		})
	}
}

func TestFilter(t *testing.T) {
	entries := []Entry{
		{File: "/repo/src/a.cpp"},
		{File: "/repo/src/gen/b.cpp"},
		{File: "/repo/test/c.cpp"},
	}

	got, err := Filter(entries, "/repo", []string{"src/**"}, []string{"**/gen/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/src/a.cpp"}, Files(got))

	got, err = Filter(entries, "/repo", nil, []string{"test/*.cpp"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = Filter(entries, "/repo", []string{"src/[a"}, nil)
	assert.Error(t, err)
}
