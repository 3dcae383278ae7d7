package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file, environment and flags.
	// Priority: defaults → config file → environment variables → flags
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
	flags      *pflag.FlagSet
	bindings   map[string]string
}

// LoaderOption configures a Loader.
type LoaderOption func(*loader)

// WithConfigFile loads an explicit config file instead of searching the root.
// A missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithFlags binds command-line flags to config keys. bindings maps a config
// key (e.g. "thresholds.max_params") to a flag name. Only flags the user
// set override lower-priority sources.
func WithFlags(fs *pflag.FlagSet, bindings map[string]string) LoaderOption {
	return func(l *loader) {
		l.flags = fs
		l.bindings = bindings
	}
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// keys lists every config key, for defaults and environment binding.
var keys = []string{
	"thresholds.long_function_lines",
	"thresholds.god_class_methods",
	"thresholds.nesting_depth",
	"thresholds.max_params",
	"thresholds.large_file_lines",
	"thresholds.min_body_lines",
	"thresholds.duplicate_ratio",
	"skip",
	"ignore",
	"languages",
	"gitignore",
	"workers",
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	// TREEMAP_THRESHOLDS_MAX_PARAMS, TREEMAP_SKIP=A,B, ...
	v.SetEnvPrefix("TREEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	setDefaults(v)

	if l.flags != nil {
		for key, name := range l.bindings {
			f := l.flags.Lookup(name)
			if f == nil {
				return nil, fmt.Errorf("binding %s: no flag %q", key, name)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding %s: %w", key, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing searched-for file is fine; defaults and env still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("thresholds.long_function_lines", d.Thresholds.LongFunctionLines)
	v.SetDefault("thresholds.god_class_methods", d.Thresholds.GodClassMethods)
	v.SetDefault("thresholds.nesting_depth", d.Thresholds.NestingDepth)
	v.SetDefault("thresholds.max_params", d.Thresholds.MaxParams)
	v.SetDefault("thresholds.large_file_lines", d.Thresholds.LargeFileLines)
	v.SetDefault("thresholds.min_body_lines", d.Thresholds.MinBodyLines)
	v.SetDefault("thresholds.duplicate_ratio", d.Thresholds.DuplicateRatio)
	v.SetDefault("skip", d.Skip)
	v.SetDefault("ignore", d.Ignore)
	v.SetDefault("languages", d.Languages)
	v.SetDefault("gitignore", d.Gitignore)
	v.SetDefault("workers", d.Workers)
}
