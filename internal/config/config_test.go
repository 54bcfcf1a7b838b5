package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so no tryzub.yaml above the
// module leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("engine", "", "")
	flags.Int("max-call-depth", 0, "")
	flags.Int("opt-level", 1, "")
	flags.Bool("verbose", false, "")
	return flags
}

func TestDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.File)
}

func TestPrecedence(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `engine: jit
max_call_depth: 64
workers: 2
keep_c: true
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, EngineJIT, cfg.Engine)
		assert.Equal(t, 64, cfg.MaxCallDepth)
		assert.Equal(t, 2, cfg.Workers)
		assert.True(t, cfg.KeepC)
		assert.Equal(t, filepath.Join(dir, FileName), cfg.File)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("TRYZUB_ENGINE", "vm")
		t.Setenv("TRYZUB_MAX_CALL_DEPTH", "128")
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, EngineVM, cfg.Engine)
		assert.Equal(t, 128, cfg.MaxCallDepth)
		assert.Equal(t, 2, cfg.Workers)
	})

	t.Run("changed flags over env", func(t *testing.T) {
		t.Setenv("TRYZUB_ENGINE", "vm")
		flags := newFlags()
		require.NoError(t, flags.Parse([]string{"--engine=auto", "--verbose"}))
		cfg, err := Load("", flags)
		require.NoError(t, err)
		assert.Equal(t, EngineAuto, cfg.Engine)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, 64, cfg.MaxCallDepth, "unset flags keep lower layers")
		assert.Equal(t, 1, cfg.OptLevel)
	})
}

func TestConfigFoundInParent(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "opt_level: 0\n")
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	t.Chdir(sub)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.OptLevel)
}

func TestExplicitFile(t *testing.T) {
	dir := isolate(t)
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("color: never\n"), 0644))

	cfg, err := Load(other, nil)
	require.NoError(t, err)
	assert.Equal(t, ColorNever, cfg.Color)

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"engine", func(c *Config) { c.Engine = "llvm" }, false},
		{"color", func(c *Config) { c.Color = "sometimes" }, false},
		{"depth", func(c *Config) { c.MaxCallDepth = 0 }, false},
		{"workers", func(c *Config) { c.Workers = -1 }, false},
		{"opt", func(c *Config) { c.OptLevel = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInvalidFileValue(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "engine: llvm\n")
	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llvm")
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	assert.False(t, cfg.UseColor(&buf), "buffers are not terminals")
	cfg.Color = ColorAlways
	assert.True(t, cfg.UseColor(&buf))
	cfg.Color = ColorNever
	assert.False(t, cfg.UseColor(os.Stdout))
}
