package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codenodes/internal/builddesc"
)

// compileDBPatterns are where build systems usually put compile_commands.json,
// relative to the project root. CMake writes it into the build tree, Meson
// into its build directory, and Bear next to the sources.
var compileDBPatterns = []string{
	builddesc.DefaultFileName,
	"build/" + builddesc.DefaultFileName,
	"out/" + builddesc.DefaultFileName,
	"builddir/" + builddesc.DefaultFileName,
	"cmake-build-*/" + builddesc.DefaultFileName,
	"build*/" + builddesc.DefaultFileName,
	"out/build/*/" + builddesc.DefaultFileName,
}

// FindCompileCommands looks for a build description under root
func FindCompileCommands(root string) (string, bool) {
	fsys := os.DirFS(root)
	for _, pattern := range compileDBPatterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil || len(matches) == 0 {
			continue
		}
		// newest wins among several build trees
		slices.SortFunc(matches, func(a, b string) int {
			return modTime(root, b).Compare(modTime(root, a))
		})
		return filepath.Join(root, filepath.FromSlash(matches[0])), true
	}
	return "", false
}

func modTime(root, rel string) (t time.Time) {
	if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
		t = info.ModTime()
	}
	return t
}
