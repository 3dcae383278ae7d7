// Package config holds analysis thresholds and filters, loaded from
// .treemap.yaml with TREEMAP_* environment and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/treemap/internal/model"
)

// FileName is the config file looked up in the analysis root.
const FileName = ".treemap.yaml"

var (
	// ErrInvalidThreshold is returned when a threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid threshold")
	// ErrUnknownKind is returned when the skip list names an unknown finding kind.
	ErrUnknownKind = errors.New("unknown finding kind")
)

// Config represents the complete treemap configuration.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	Skip       []string   `yaml:"skip" mapstructure:"skip"`           // finding kinds to suppress
	Ignore     []string   `yaml:"ignore" mapstructure:"ignore"`       // extra directory names to prune
	Languages  []string   `yaml:"languages" mapstructure:"languages"` // empty means all
	Gitignore  bool       `yaml:"gitignore" mapstructure:"gitignore"` // honor the root .gitignore
	Workers    int        `yaml:"workers" mapstructure:"workers"`     // parse-phase parallelism; 0 means GOMAXPROCS
}

// Thresholds configures the smell heuristics. Every check fires when the
// measured value is strictly greater than its threshold.
type Thresholds struct {
	LongFunctionLines int     `yaml:"long_function_lines" mapstructure:"long_function_lines"`
	GodClassMethods   int     `yaml:"god_class_methods" mapstructure:"god_class_methods"`
	NestingDepth      int     `yaml:"nesting_depth" mapstructure:"nesting_depth"`
	MaxParams         int     `yaml:"max_params" mapstructure:"max_params"`
	LargeFileLines    int     `yaml:"large_file_lines" mapstructure:"large_file_lines"`
	MinBodyLines      int     `yaml:"min_body_lines" mapstructure:"min_body_lines"`   // shortest body kept for duplicate search
	DuplicateRatio    float64 `yaml:"duplicate_ratio" mapstructure:"duplicate_ratio"` // similarity above which bodies are duplicates
}

// DefaultThresholds returns the stock heuristic thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LongFunctionLines: 50,
		GodClassMethods:   15,
		NestingDepth:      4,
		MaxParams:         5,
		LargeFileLines:    500,
		MinBodyLines:      10,
		DuplicateRatio:    0.8,
	}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Thresholds: DefaultThresholds(),
		Skip:       []string{},
		Ignore:     []string{},
		Languages:  []string{},
	}
}

// SkipKinds returns the suppressed kinds as a set.
func (c *Config) SkipKinds() map[model.Kind]struct{} {
	set := make(map[model.Kind]struct{}, len(c.Skip))
	for _, k := range c.Skip {
		set[model.Kind(k)] = struct{}{}
	}
	return set
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(data), nil
}

// Validate checks the configuration for out-of-range values.
func Validate(c *Config) error {
	t := c.Thresholds
	checks := []struct {
		name  string
		value int
	}{
		{"long_function_lines", t.LongFunctionLines},
		{"god_class_methods", t.GodClassMethods},
		{"nesting_depth", t.NestingDepth},
		{"max_params", t.MaxParams},
		{"large_file_lines", t.LargeFileLines},
		{"min_body_lines", t.MinBodyLines},
	}
	for _, ch := range checks {
		if ch.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidThreshold, ch.name, ch.value)
		}
	}
	if t.DuplicateRatio <= 0 || t.DuplicateRatio > 1 {
		return fmt.Errorf("%w: duplicate_ratio must be in (0, 1], got %g", ErrInvalidThreshold, t.DuplicateRatio)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidThreshold, c.Workers)
	}

	var unknown []string
	for _, k := range c.Skip {
		if !model.Kind(k).Valid() {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %v", ErrUnknownKind, unknown)
	}
	return nil
}
