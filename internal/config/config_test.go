package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/treemap/internal/model"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 50, cfg.Thresholds.LongFunctionLines)
	assert.Equal(t, 15, cfg.Thresholds.GodClassMethods)
	assert.Equal(t, 4, cfg.Thresholds.NestingDepth)
	assert.Equal(t, 5, cfg.Thresholds.MaxParams)
	assert.Equal(t, 500, cfg.Thresholds.LargeFileLines)
	assert.Equal(t, 10, cfg.Thresholds.MinBodyLines)
	assert.InDelta(t, 0.8, cfg.Thresholds.DuplicateRatio, 1e-9)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"negative params", func(c *Config) { c.Thresholds.MaxParams = -1 }, ErrInvalidThreshold},
		{"zero ratio", func(c *Config) { c.Thresholds.DuplicateRatio = 0 }, ErrInvalidThreshold},
		{"ratio above one", func(c *Config) { c.Thresholds.DuplicateRatio = 1.5 }, ErrInvalidThreshold},
		{"negative workers", func(c *Config) { c.Workers = -2 }, ErrInvalidThreshold},
		{"unknown kind", func(c *Config) { c.Skip = []string{"NOT_A_KIND"} }, ErrUnknownKind},
		{"known kind", func(c *Config) { c.Skip = []string{string(model.MissingDoc)} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSkipKinds(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Skip = []string{"MISSING_DOC", "LARGE_FILE"}
	set := cfg.SkipKinds()
	assert.Len(t, set, 2)
	assert.Contains(t, set, model.MissingDoc)
	assert.Contains(t, set, model.LargeFile)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), cfg.Thresholds)
	assert.Empty(t, cfg.Skip)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `thresholds:
  long_function_lines: 80
  max_params: 7
skip:
  - MISSING_DOC
ignore:
  - generated
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Thresholds.LongFunctionLines)
	assert.Equal(t, 7, cfg.Thresholds.MaxParams)
	assert.Equal(t, 15, cfg.Thresholds.GodClassMethods)
	assert.Equal(t, []string{"MISSING_DOC"}, cfg.Skip)
	assert.Equal(t, []string{"generated"}, cfg.Ignore)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "skip:\n  - BOGUS\n")

	_, err := NewLoader(dir).Load()
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewLoader(dir, WithConfigFile(filepath.Join(dir, "missing.yaml"))).Load()
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "thresholds:\n  nesting_depth: 6\n")
	t.Setenv("TREEMAP_THRESHOLDS_NESTING_DEPTH", "3")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Thresholds.NestingDepth)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "thresholds:\n  god_class_methods: 20\n  max_params: 9\n")
	t.Setenv("TREEMAP_THRESHOLDS_GOD_CLASS_METHODS", "30")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("god-class", 15, "")
	fs.Int("params", 5, "")
	require.NoError(t, fs.Parse([]string{"--god-class", "12"}))

	cfg, err := NewLoader(dir, WithFlags(fs, map[string]string{
		"thresholds.god_class_methods": "god-class",
		"thresholds.max_params":        "params",
	})).Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Thresholds.GodClassMethods)
	// Unset flag does not shadow the file.
	assert.Equal(t, 9, cfg.Thresholds.MaxParams)
}

func TestLoadUnknownFlagBinding(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	_, err := NewLoader(t.TempDir(), WithFlags(fs, map[string]string{"skip": "skip"})).Load()
	assert.Error(t, err)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	out, err := Default().YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "long_function_lines: 50")
	assert.Contains(t, out, "duplicate_ratio: 0.8")
}
