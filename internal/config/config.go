// Package config loads toolchain settings from defaults, tryzub.yaml,
// TRYZUB_* environment variables and command-line flags, in increasing
// precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/Evge14n/tryzub/internal/diagnostics"
)

const (
	// FileName is the project config file looked up from the working directory.
	FileName = "tryzub.yaml"
	// EnvPrefix marks environment variables that override config keys.
	EnvPrefix = "TRYZUB_"

	maxUpwardSearchLevels = 10
)

// Engine values.
const (
	EngineAuto = "auto"
	EngineVM   = "vm"
	EngineJIT  = "jit"
)

// Color values.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds every setting the commands read.
type Config struct {
	Engine                  string `koanf:"engine"`
	MaxCallDepth            int    `koanf:"max_call_depth"`
	Workers                 int    `koanf:"workers"`
	OptLevel                int    `koanf:"opt_level"`
	CaseInsensitiveKeywords bool   `koanf:"case_insensitive_keywords"`
	CC                      string `koanf:"cc"`
	KeepC                   bool   `koanf:"keep_c"`
	Color                   string `koanf:"color"`
	Verbose                 bool   `koanf:"verbose"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Defaults is the lowest configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"engine":                    EngineAuto,
		"max_call_depth":            1024,
		"workers":                   0,
		"opt_level":                 1,
		"case_insensitive_keywords": false,
		"cc":                        "",
		"keep_c":                    false,
		"color":                     ColorAuto,
		"verbose":                   false,
	}
}

// Default returns the configuration with no file, environment or flags.
func Default() *Config {
	return &Config{
		Engine:       EngineAuto,
		MaxCallDepth: 1024,
		OptLevel:     1,
		Color:        ColorAuto,
	}
}

// Load layers the configuration sources. An explicit cfgFile must exist;
// otherwise tryzub.yaml is searched for upward from the working directory.
// Only flags that were set on the command line override other layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = findUpward(cwd)
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// TRYZUB_MAX_CALL_DEPTH -> max_call_depth
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no command can use.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineAuto, EngineVM, EngineJIT:
	default:
		return fmt.Errorf("invalid engine %q: want auto, vm or jit", c.Engine)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q: want auto, always or never", c.Color)
	}
	if c.MaxCallDepth < 1 {
		return fmt.Errorf("max_call_depth must be positive, got %d", c.MaxCallDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.OptLevel < 0 {
		return fmt.Errorf("opt_level must not be negative, got %d", c.OptLevel)
	}
	return nil
}

// UseColor decides whether output to w is styled.
func (c *Config) UseColor(w io.Writer) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return diagnostics.ColorEnabled(w)
}

// findUpward returns the nearest tryzub.yaml at or above dir.
func findUpward(dir string) string {
	for i := 0; i < maxUpwardSearchLevels; i++ {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
