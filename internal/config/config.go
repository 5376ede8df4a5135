package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/standardbeagle/codenodes/internal/builddesc"
	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
)

// File names searched for in the project directory, in order
const (
	KDLFileName  = ".codenodes.kdl"
	TOMLFileName = ".codenodes.toml"
)

type Config struct {
	// Root is the project directory relative paths are resolved against
	Root        string
	Build       Build
	Performance Performance
	Filter      Filter
	Frontend    Frontend
	Watch       Watch
	Log         Log
	// Source is the file the project settings came from, empty for defaults
	Source string
}

type Build struct {
	// CompileCommands is the build description; empty means search the project
	CompileCommands string
	Output          string
	Format          string // "graphml", "json" or "yaml"
}

type Performance struct {
	Workers int // 0 = auto-detect (NumCPU-1)
}

type Filter struct {
	Include          []string
	Exclude          []string
	RespectGitignore bool // also skip files matched by the project .gitignore
}

type Frontend struct {
	MaxIncludeDepth      int
	FollowSystemIncludes bool
	ExtraArgs            []string
}

type Watch struct {
	DebounceMs int
}

type Log struct {
	Level  string
	Format string // "text" or "json"
	Color  bool
}

// Default returns the configuration used when no file is present
func Default(root string) *Config {
	return &Config{
		Root: root,
		Build: Build{
			Output: "symbols.graphml",
			Format: "graphml",
		},
		Filter: Filter{
			Exclude: []string{
				"**/CMakeFiles/**", // compiler probes
				"**/_deps/**",      // FetchContent checkouts
			},
			RespectGitignore: true,
		},
		Frontend: Frontend{MaxIncludeDepth: 16},
		Watch:    Watch{DebounceMs: 300},
		Log:      Log{Level: "info", Format: "text", Color: true},
	}
}

// Load reads the configuration for the project in rootDir. A global
// ~/.codenodes.kdl provides the base that the project file overrides.
func Load(rootDir string) (*Config, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, lcierrors.NewConfigError("root", rootDir, err)
	}

	var base *Config
	if home, err := os.UserHomeDir(); err == nil && home != root {
		if globalCfg, err := LoadKDL(filepath.Join(home, KDLFileName), root); err == nil {
			base = globalCfg
		}
	}

	var project *Config
	for _, name := range []string{KDLFileName, TOMLFileName} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if project, err = LoadFile(path); err != nil {
			return nil, err
		}
		break
	}

	switch {
	case base != nil && project != nil:
		return mergeConfigs(base, project), nil
	case project != nil:
		return project, nil
	case base != nil:
		return base, nil
	}
	return Default(root), nil
}

// LoadFile reads one configuration file. The format follows the extension
// and relative paths are resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, lcierrors.NewConfigError("config", path, err)
	}
	if filepath.Ext(abs) == ".toml" {
		return LoadTOML(abs, filepath.Dir(abs))
	}
	return LoadKDL(abs, filepath.Dir(abs))
}

// mergeConfigs overlays a project config on a base config. Exclusions from
// both are kept; inclusions come from the project when it names any.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Filter.Exclude) > 0 {
		merged.Filter.Exclude = DeduplicatePatterns(append(slices.Clone(base.Filter.Exclude), project.Filter.Exclude...))
	}
	if len(project.Filter.Include) == 0 && len(base.Filter.Include) > 0 {
		merged.Filter.Include = base.Filter.Include
	}
	return &merged
}

// DeduplicatePatterns drops repeated patterns, keeping first occurrences
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := patterns[:0:0]
	for _, p := range patterns {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// CompileCommandsPath returns the build description to read: the
// configured one, or the first compile_commands.json found in the project.
func (c *Config) CompileCommandsPath() (string, error) {
	if c.Build.CompileCommands != "" {
		return c.resolve(c.Build.CompileCommands), nil
	}
	if path, ok := FindCompileCommands(c.Root); ok {
		return path, nil
	}
	return "", lcierrors.NewBuildDescriptionError(filepath.Join(c.Root, builddesc.DefaultFileName), os.ErrNotExist)
}

// OutputPath returns the graph output file
func (c *Config) OutputPath() string {
	return c.resolve(c.Build.Output)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}
