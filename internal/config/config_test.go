package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logos/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := LoadWithEnv("", map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, store.MemoryDSN, cfg.Journal)
	assert.True(t, cfg.MinimalOutput)
	assert.Equal(t, DefaultSuggestions, cfg.Suggestions)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.JournalEnabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
specs_dir: ./specs
journal: ./logos.db
minimal_output: false
suggestions: 3
log:
  level: debug
  format: json
`)

	cfg, err := LoadWithEnv(path, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "./specs", cfg.SpecsDir)
	assert.Equal(t, "./logos.db", cfg.Journal)
	assert.False(t, cfg.MinimalOutput)
	assert.Equal(t, 3, cfg.Suggestions)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "specs_dir: specs\n")

	cfg, err := LoadWithEnv(path, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "specs", cfg.SpecsDir)
	assert.True(t, cfg.MinimalOutput)
	assert.Equal(t, DefaultSuggestions, cfg.Suggestions)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := LoadWithEnv(writeConfig(t, ""), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, "specs_dir: specs\ncolour: blue\n")

	_, err := LoadWithEnv(path, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"), map[string]string{})
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "suggestions: 3\nlog:\n  level: debug\n")

	cfg, err := LoadWithEnv(path, map[string]string{
		"LOGOS_SUGGESTIONS":    "7",
		"LOGOS_LOG_LEVEL":      "error",
		"LOGOS_LOG_FORMAT":     "json",
		"LOGOS_MINIMAL_OUTPUT": "false",
		"LOGOS_JOURNAL":        "off",
		"LOGOS_SPECS_DIR":      "/etc/logos/specs",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Suggestions)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.MinimalOutput)
	assert.False(t, cfg.JournalEnabled())
	assert.Equal(t, "/etc/logos/specs", cfg.SpecsDir)
}

func TestLoad_BadEnvValue(t *testing.T) {
	_, err := LoadWithEnv("", map[string]string{"LOGOS_SUGGESTIONS": "many"})
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty journal", func(c *Config) { c.Journal = "" }, "journal"},
		{"zero suggestions", func(c *Config) { c.Suggestions = 0 }, "suggestions"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}
