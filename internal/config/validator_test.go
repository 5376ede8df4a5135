package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := Default("/test/root")
	cfg.Build.Format = "JSON"
	cfg.Build.Output = ""
	cfg.Frontend.MaxIncludeDepth = 0
	cfg.Log = Log{}

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.GreaterOrEqual(t, cfg.Performance.Workers, 1)
	assert.Equal(t, "json", cfg.Build.Format)
	assert.Equal(t, "symbols.json", cfg.Build.Output)
	assert.Equal(t, 16, cfg.Frontend.MaxIncludeDepth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty root", func(c *Config) { c.Root = "" }, "root"},
		{"unknown format", func(c *Config) { c.Build.Format = "dot" }, "build"},
		{"negative workers", func(c *Config) { c.Performance.Workers = -1 }, "performance"},
		{"bad glob", func(c *Config) { c.Filter.Exclude = []string{"src/[abc"} }, "filter"},
		{"negative depth", func(c *Config) { c.Frontend.MaxIncludeDepth = -2 }, "frontend"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/test/root")
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			var cfgErr *lcierrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
