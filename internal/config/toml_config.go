package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
)

// tomlFile mirrors the KDL layout. Pointers tell unset keys from zero values.
type tomlFile struct {
	Build struct {
		CompileCommands *string `toml:"compile_commands"`
		Output          *string `toml:"output"`
		Format          *string `toml:"format"`
	} `toml:"build"`
	Performance struct {
		Workers *int `toml:"workers"`
	} `toml:"performance"`
	Filter struct {
		Include          []string `toml:"include"`
		Exclude          []string `toml:"exclude"`
		RespectGitignore *bool    `toml:"respect_gitignore"`
	} `toml:"filter"`
	Frontend struct {
		MaxIncludeDepth      *int     `toml:"max_include_depth"`
		FollowSystemIncludes *bool    `toml:"follow_system_includes"`
		ExtraArgs            []string `toml:"extra_args"`
	} `toml:"frontend"`
	Watch struct {
		DebounceMs *int `toml:"debounce_ms"`
	} `toml:"watch"`
	Log struct {
		Level  *string `toml:"level"`
		Format *string `toml:"format"`
		Color  *bool   `toml:"color"`
	} `toml:"log"`
}

// LoadTOML reads a .codenodes.toml file. root is the project directory.
func LoadTOML(path, root string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, lcierrors.NewConfigError("config", path, err)
	}
	cfg, err := parseTOML(content, root)
	if err != nil {
		return nil, lcierrors.NewConfigError("config", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

func parseTOML(content []byte, root string) (*Config, error) {
	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return nil, err
	}

	cfg := Default(root)
	set(&cfg.Build.CompileCommands, f.Build.CompileCommands)
	set(&cfg.Build.Output, f.Build.Output)
	set(&cfg.Build.Format, f.Build.Format)
	set(&cfg.Performance.Workers, f.Performance.Workers)
	cfg.Filter.Include = append(cfg.Filter.Include, f.Filter.Include...)
	cfg.Filter.Exclude = DeduplicatePatterns(append(cfg.Filter.Exclude, f.Filter.Exclude...))
	set(&cfg.Filter.RespectGitignore, f.Filter.RespectGitignore)
	set(&cfg.Frontend.MaxIncludeDepth, f.Frontend.MaxIncludeDepth)
	set(&cfg.Frontend.FollowSystemIncludes, f.Frontend.FollowSystemIncludes)
	cfg.Frontend.ExtraArgs = append(cfg.Frontend.ExtraArgs, f.Frontend.ExtraArgs...)
	set(&cfg.Watch.DebounceMs, f.Watch.DebounceMs)
	set(&cfg.Log.Level, f.Log.Level)
	set(&cfg.Log.Format, f.Log.Format)
	set(&cfg.Log.Color, f.Log.Color)
	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
