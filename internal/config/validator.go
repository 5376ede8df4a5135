package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codenodes/internal/debug"
	"github.com/standardbeagle/codenodes/internal/emit"
	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Root == "" {
		return lcierrors.NewConfigError("root", "", errors.New("project root cannot be empty"))
	}
	if err := v.validateBuildConfig(&cfg.Build); err != nil {
		return lcierrors.NewConfigError("build", cfg.Build.Format, err)
	}
	if cfg.Performance.Workers < 0 {
		return lcierrors.NewConfigError("performance", fmt.Sprint(cfg.Performance.Workers),
			fmt.Errorf("workers cannot be negative, got %d", cfg.Performance.Workers))
	}
	if err := v.validateFilterConfig(&cfg.Filter); err != nil {
		return lcierrors.NewConfigError("filter", "", err)
	}
	if cfg.Frontend.MaxIncludeDepth < 0 {
		return lcierrors.NewConfigError("frontend", fmt.Sprint(cfg.Frontend.MaxIncludeDepth),
			fmt.Errorf("max_include_depth cannot be negative, got %d", cfg.Frontend.MaxIncludeDepth))
	}
	if cfg.Watch.DebounceMs < 0 {
		return lcierrors.NewConfigError("watch", fmt.Sprint(cfg.Watch.DebounceMs),
			fmt.Errorf("debounce_ms cannot be negative, got %d", cfg.Watch.DebounceMs))
	}
	if err := v.validateLogConfig(&cfg.Log); err != nil {
		return lcierrors.NewConfigError("log", cfg.Log.Level, err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateBuildConfig(build *Build) error {
	f, err := emit.ParseFormat(build.Format)
	if err != nil {
		return err
	}
	build.Format = string(f)
	return nil
}

func (v *Validator) validateFilterConfig(filter *Filter) error {
	for _, p := range slices.Concat(filter.Include, filter.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

func (v *Validator) validateLogConfig(log *Log) error {
	if log.Level != "" {
		if _, err := debug.ParseLevel(log.Level); err != nil {
			return err
		}
	}
	switch strings.ToLower(log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", log.Format)
	}
	return nil
}

// setSmartDefaults fills values left at zero
func (v *Validator) setSmartDefaults(cfg *Config) {
	// leave one core for the OS
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Frontend.MaxIncludeDepth == 0 {
		cfg.Frontend.MaxIncludeDepth = 16
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 300
	}
	if cfg.Build.Output == "" {
		cfg.Build.Output = "symbols." + cfg.Build.Format
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
