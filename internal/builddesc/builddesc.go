// Package builddesc loads compile databases (compile_commands.json).
package builddesc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/pkg/pathutil"
)

// DefaultFileName is the conventional compile database name
const DefaultFileName = "compile_commands.json"

// Entry is one translation unit to parse
type Entry struct {
	// Directory is the working directory of the compile command
	Directory string
	// File is the source file, absolute when Directory is
	File string
	// Args are the compiler arguments for the front-end, without the
	// compiler itself, the source file, -c and -o
	Args []string
	// Output is the object file named by the entry, if any
	Output string
}

// rawEntry accepts both database shapes: "command" as one string or
// "arguments" as a pre-split list.
type rawEntry struct {
	Directory string   `json:"directory"`
	Command   string   `json:"command"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
	Output    string   `json:"output"`
}

var errNoEntries = errors.New("no compile commands")

// Load reads and parses a compile database. Any failure is a
// *errors.BuildDescriptionError and means nothing should be parsed.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lcierrors.NewBuildDescriptionError(path, lcierrors.NewFileError("read", path, err))
	}
	return Parse(data, path)
}

// Parse decodes a compile database. source names the database in errors.
func Parse(data []byte, source string) ([]Entry, error) {
	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, lcierrors.NewBuildDescriptionError(source, err)
	}
	if len(raw) == 0 {
		return nil, lcierrors.NewBuildDescriptionError(source, errNoEntries)
	}

	entries := make([]Entry, 0, len(raw))
	seen := make(map[uint64]struct{}, len(raw))
	for i, r := range raw {
		e, err := r.entry()
		if err != nil {
			return nil, lcierrors.NewBuildDescriptionError(source, err).WithEntry(i)
		}

		key := entryKey(e)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r rawEntry) entry() (Entry, error) {
	if r.File == "" {
		return Entry{}, errors.New(`entry has no "file"`)
	}

	tokens := r.Arguments
	if len(tokens) == 0 {
		tokens = SplitCommand(r.Command)
	}
	if len(tokens) == 0 {
		return Entry{}, errors.New(`entry has neither "command" nor "arguments"`)
	}

	file := r.File
	if !filepath.IsAbs(file) && r.Directory != "" {
		file = filepath.Join(r.Directory, file)
	}

	return Entry{
		Directory: r.Directory,
		File:      filepath.Clean(file),
		Args:      FrontendArgs(tokens, r.File, r.Directory),
		Output:    r.Output,
	}, nil
}

// SplitCommand splits a command string on whitespace, dropping empty tokens
func SplitCommand(command string) []string {
	return strings.Fields(command)
}

// FrontendArgs drops the compiler executable, the source file and the
// -c / -o flags from a compile command. Relative -I style paths are made
// absolute against directory.
func FrontendArgs(tokens []string, file, directory string) []string {
	if len(tokens) > 0 && !strings.HasPrefix(tokens[0], "-") {
		tokens = tokens[1:]
	}

	args := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "-c":
			continue
		case tok == "-o":
			i++
			continue
		case strings.HasPrefix(tok, "-o") && len(tok) > 2:
			continue
		case tok == file:
			continue
		}

		if dir, flag, ok := includeDir(tok); ok {
			if dir == "" && i+1 < len(tokens) {
				i++
				dir = tokens[i]
			}
			if dir != "" && !filepath.IsAbs(dir) && directory != "" {
				dir = filepath.Join(directory, dir)
			}
			args = append(args, flag+dir)
			continue
		}
		args = append(args, tok)
	}
	return args
}

var includeFlags = []string{"-isystem", "-iquote", "-I"}

// includeDir splits an include flag from its directory. dir is empty when
// the directory is the next token.
func includeDir(tok string) (dir, flag string, ok bool) {
	for _, f := range includeFlags {
		if strings.HasPrefix(tok, f) {
			return tok[len(f):], f, true
		}
	}
	return "", "", false
}

func entryKey(e Entry) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(e.File)
	for _, a := range e.Args {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(a)
	}
	return d.Sum64()
}

// Filter keeps entries whose file matches any include pattern (all when
// include is empty) and no exclude pattern. Patterns are doublestar globs
// matched against the path relative to base and against the full path.
func Filter(entries []Entry, base string, include, exclude []string) ([]Entry, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern %s", strconv.Quote(p))
		}
	}

	kept := entries[:0:0]
	for _, e := range entries {
		if len(include) > 0 && !matchAny(include, base, e.File) {
			continue
		}
		if matchAny(exclude, base, e.File) {
			continue
		}
		kept = append(kept, e)
	}
	return kept, nil
}

// MatchAny reports whether path matches one of patterns
func MatchAny(patterns []string, base, path string) bool {
	return matchAny(patterns, base, path)
}

func matchAny(patterns []string, base, path string) bool {
	candidates := []string{filepath.ToSlash(path)}
	if rel, ok := pathutil.Within(path, base); ok {
		candidates = append(candidates, rel)
	}
	for _, p := range patterns {
		for _, c := range candidates {
			if ok, _ := doublestar.Match(p, c); ok {
				return true
			}
		}
	}
	return false
}

// Files lists the source files of entries in order
func Files(entries []Entry) []string {
	files := make([]string, len(entries))
	for i, e := range entries {
		files[i] = e.File
	}
	return files
}
