// Package config loads the umat CLI configuration.
//
// Sources are merged with increasing priority: built-in defaults, the YAML
// config file, UMAT_* environment variables and explicitly set flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/woozymasta/umat/compiler"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "umat.yaml"

// EnvPrefix prefixes environment overrides, e.g. UMAT_LOG_LEVEL.
const EnvPrefix = "UMAT_"

// Output formats.
const (
	OutputYAML  = "yaml"
	OutputJSON  = "json"
	OutputProps = "props"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the CLI settings.
type Config struct {
	Root      string  `koanf:"root"`       // Repository root holding exports/
	Manifest  string  `koanf:"manifest"`   // Optional YAML package manifest; the root is scanned when empty
	LogLevel  string  `koanf:"log_level"`  // debug, info, warn or error
	LogFormat string  `koanf:"log_format"` // text or json
	Output    string  `koanf:"output"`     // yaml, json or props
	MaxDepth  int     `koanf:"max_depth"`
	Jobs      int     `koanf:"jobs"`
	Time      float64 `koanf:"time"` // Scene time used when sampling compiled colors
}

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		"root":       ".",
		"manifest":   "",
		"log_level":  "warn",
		"log_format": "text",
		"output":     OutputYAML,
		"max_depth":  compiler.DefaultMaxDepth,
		"jobs":       runtime.NumCPU(),
		"time":       0.0,
	}
}

// Load merges all sources. cfgFile may be empty, in which case DefaultFile
// is used when it exists. It returns the config and the file used, if any.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// UMAT_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	// Paths in a config file are relative to the file.
	if used != "" && !changed(flags, "root") && os.Getenv(EnvPrefix+"ROOT") == "" {
		cfg.Root = resolveRelative(cfg.Root, filepath.Dir(used))
	}

	return &cfg, used, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

func changed(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

func resolveRelative(p, base string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks enumerated settings and numeric ranges.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{"text", "json"}, c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format %q: want text or json", c.LogFormat))
	}
	if !slices.Contains([]string{OutputYAML, OutputJSON, OutputProps}, c.Output) {
		errs = append(errs, fmt.Errorf("output %q: want yaml, json or props", c.Output))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth %d: must not be negative", c.MaxDepth))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs %d: must be at least 1", c.Jobs))
	}
	if c.Root == "" {
		errs = append(errs, errors.New("root is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// NewLogger builds the CLI logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
