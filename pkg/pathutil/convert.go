// Package pathutil converts between the absolute paths used internally and
// the project-relative paths shown to users and matched against globs.
package pathutil

import (
	"path/filepath"
)

// ToRelative converts an absolute path to one relative to rootDir. Paths
// that are already relative, or that lie outside rootDir, are returned
// unchanged.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.cpp", "/home/user/project") → "src/main.cpp"
//   - ToRelative("/usr/include/stdio.h", "/home/user/project") → "/usr/include/stdio.h"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" || !filepath.IsAbs(absPath) {
		return absPath
	}
	absPath = filepath.Clean(absPath)
	if rel, ok := within(absPath, filepath.Clean(rootDir)); ok {
		return rel
	}
	return absPath
}

// Within returns path relative to rootDir with forward slashes, the form
// gitignore and doublestar patterns are written in. ok is false when path
// is not inside rootDir.
func Within(path, rootDir string) (string, bool) {
	if rootDir == "" {
		return "", false
	}
	rel, ok := within(path, rootDir)
	if !ok {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func within(path, rootDir string) (string, bool) {
	rel, err := filepath.Rel(rootDir, path)
	if err != nil {
		// different volumes on Windows
		return "", false
	}
	if rel != "." && !filepath.IsLocal(rel) {
		return "", false
	}
	return rel, true
}
