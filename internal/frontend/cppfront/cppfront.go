// Package cppfront is a C/C++ front-end built on tree-sitter. It gives the
// symbol graph builder the same view libclang would: declaration cursors
// with clang-style USRs, type descriptors with canonical forms, and
// diagnostics. It follows quoted includes (and, optionally, system ones),
// but it does not expand macros or instantiate templates.
package cppfront

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/security"
)

// Options tune include handling
type Options struct {
	// MaxIncludeDepth bounds nested includes; the main file is depth 0
	MaxIncludeDepth int
	// FollowSystemIncludes also follows #include <...> through -I and -isystem
	FollowSystemIncludes bool
	// ExtraArgs are prepended to every file's compiler arguments
	ExtraArgs []string
	// MaxFileSizeKB skips larger files; 0 means security.DefaultMaxSizeKB
	MaxFileSizeKB int64
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{MaxIncludeDepth: 16, MaxFileSizeKB: security.DefaultMaxSizeKB}
}

// Frontend parses C and C++ files. It is safe for concurrent use; every
// Parse call gets its own tree-sitter parser.
type Frontend struct {
	opts      Options
	language  *tree_sitter.Language
	validator *security.FileValidator
}

var _ frontend.Frontend = (*Frontend)(nil)

// New creates a front-end
func New(opts Options) *Frontend {
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultOptions().MaxIncludeDepth
	}
	if opts.MaxFileSizeKB <= 0 {
		opts.MaxFileSizeKB = DefaultOptions().MaxFileSizeKB
	}
	return &Frontend{
		opts:      opts,
		language:  tree_sitter.NewLanguage(tree_sitter_cpp.Language()),
		validator: security.NewFileValidator(opts.MaxFileSizeKB),
	}
}

// Parse builds a translation unit for file. Only an unreadable main file
// or an unusable grammar is an error; everything else becomes diagnostics.
func (f *Frontend) Parse(ctx context.Context, file string, args []string) (frontend.TranslationUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := filepath.Abs(file)
	if err != nil {
		return nil, lcierrors.NewFileError("resolve", file, err)
	}
	src, err := f.validator.ReadSource(path)
	if errors.Is(err, security.ErrBinary) {
		return nil, lcierrors.NewParseError(file, err)
	}
	if err != nil {
		return nil, lcierrors.NewFileError("read", file, err)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(f.language); err != nil {
		return nil, err
	}

	all := make([]string, 0, len(f.opts.ExtraArgs)+len(args))
	all = append(all, f.opts.ExtraArgs...)
	all = append(all, args...)

	u := newUnit(path)
	b := &build{
		ctx:       ctx,
		unit:      u,
		parser:    parser,
		opts:      f.opts,
		validator: f.validator,
		paths:     parseArgs(all),
		seen:      make(map[uint64]struct{}),
	}
	b.seen[includeKey(path)] = struct{}{}
	b.parseFile(path, src, 0, u.topLevel())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// build is the state of one Parse call
type build struct {
	ctx       context.Context
	unit      *unit
	parser    *tree_sitter.Parser
	opts      Options
	validator *security.FileValidator
	paths     searchPaths
	seen      map[uint64]struct{}
}

func (b *build) parseFile(path string, src []byte, depth int, dc declCtx) {
	tree := b.parser.Parse(src, nil)
	if tree == nil {
		b.unit.diagnose(frontend.SeverityError, frontend.Location{File: path}, "could not parse file")
		return
	}
	defer tree.Close()

	w := &walker{b: b, u: b.unit, path: path, src: src, depth: depth}
	root := tree.RootNode()
	w.syntaxErrors(root)
	w.items(root, dc)
}

// searchPaths are the include directories named by compiler arguments
type searchPaths struct {
	quote  []string
	angled []string
	system []string
}

// parseArgs picks the include directories out of a compile command. Macro
// definitions and language options are accepted and ignored.
func parseArgs(args []string) searchPaths {
	var sp searchPaths
	for i := 0; i < len(args); i++ {
		arg := args[i]
		for _, flag := range []struct {
			name string
			into *[]string
		}{
			{"-iquote", &sp.quote},
			{"-isystem", &sp.system},
			{"-I", &sp.angled},
		} {
			if !strings.HasPrefix(arg, flag.name) {
				continue
			}
			dir := arg[len(flag.name):]
			if dir == "" && i+1 < len(args) {
				i++
				dir = args[i]
			}
			if dir != "" {
				*flag.into = append(*flag.into, dir)
			}
			break
		}
	}
	return sp
}

// findInclude searches for an included file the way a compiler does:
// quoted includes look next to the including file first.
func (b *build) findInclude(name string, angled bool, fromDir string) (string, bool) {
	if filepath.IsAbs(name) {
		return name, isFile(name)
	}

	var dirs []string
	if !angled {
		dirs = append(dirs, fromDir)
		dirs = append(dirs, b.paths.quote...)
	}
	dirs = append(dirs, b.paths.angled...)
	if angled || b.opts.FollowSystemIncludes {
		dirs = append(dirs, b.paths.system...)
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs, true
			}
			return candidate, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func includeKey(path string) uint64 {
	return xxhash.Sum64String(filepath.Clean(path))
}
