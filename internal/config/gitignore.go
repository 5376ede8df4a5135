package config

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches paths against the patterns of a .gitignore file.
// Paths are slash separated and relative to the directory of the file.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern string
	Negate  bool
	// Directory patterns end in a slash and match directories only
	Directory bool
	// Anchored patterns contain a slash and match from the root only
	Anchored bool
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file
// leaves the parser empty.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	f, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return gp.read(f)
}

func (gp *GitignoreParser) read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern adds one .gitignore line; blank lines and comments are ignored
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var p GitignorePattern
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		p.Negate, line = true, rest
	}
	line = strings.TrimPrefix(line, `\`)
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		p.Directory, line = true, rest
	}
	if strings.Contains(line, "/") {
		p.Anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if line == "" || !doublestar.ValidatePattern(line) {
		return
	}
	p.Pattern = line
	gp.patterns = append(gp.patterns, p)
}

// ShouldIgnore reports whether rel is ignored. A path inside an ignored
// directory is ignored too, and the last matching pattern wins.
func (gp *GitignoreParser) ShouldIgnore(rel string, isDir bool) bool {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || len(gp.patterns) == 0 {
		return false
	}

	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		if gp.match(dir, true) {
			return true
		}
	}
	return gp.match(rel, isDir)
}

func (gp *GitignoreParser) match(rel string, isDir bool) bool {
	ignored := false
	for _, p := range gp.patterns {
		if p.Directory && !isDir {
			continue
		}
		if p.matches(rel) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (p GitignorePattern) matches(rel string) bool {
	if p.Anchored {
		ok, _ := doublestar.Match(p.Pattern, rel)
		return ok
	}
	ok, _ := doublestar.Match("**/"+p.Pattern, rel)
	return ok
}

// GetExclusionPatterns converts the non-negated patterns to exclusion globs
// usable in Filter.Exclude
func (gp *GitignoreParser) GetExclusionPatterns() []string {
	out := make([]string, 0, len(gp.patterns))
	for _, p := range gp.patterns {
		if p.Negate {
			continue
		}
		glob := p.Pattern
		if !p.Anchored {
			glob = "**/" + glob
		}
		if !p.Directory {
			out = append(out, glob)
		}
		out = append(out, glob+"/**")
	}
	return DeduplicatePatterns(out)
}
