// Package config loads logos settings from a YAML file and LOGOS_*
// environment variables. Environment values win over the file, and the file
// wins over defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/logos/internal/logging"
	"github.com/roach88/logos/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOGOS_"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "logos.yaml"

// DefaultSuggestions is how many similar handles a PathNotFoundError lists.
const DefaultSuggestions = 5

// Config holds every tunable of a logos instance.
type Config struct {
	// SpecsDir holds CUE specs compiled on first resolve. Empty disables JIT.
	SpecsDir string `yaml:"specs_dir" env:"SPECS_DIR"`

	// Journal is the SQLite DSN of the diagnostic journal. ":memory:" keeps
	// it private to the process; "off" disables it.
	Journal string `yaml:"journal" env:"JOURNAL"`

	MinimalOutput bool `yaml:"minimal_output" env:"MINIMAL_OUTPUT"`
	Suggestions   int  `yaml:"suggestions" env:"SUGGESTIONS"`

	Log logging.Config `yaml:"log" envPrefix:"LOG_"`
}

// JournalOff disables the diagnostic journal.
const JournalOff = "off"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Journal:       store.MemoryDSN,
		MinimalOutput: true,
		Suggestions:   DefaultSuggestions,
		Log:           logging.DefaultConfig(),
	}
}

// Load reads path (optional), applies environment overrides from the
// process environment and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ means the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML decodes strictly: unknown keys are errors.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Journal == "" {
		return errors.New("journal must not be empty (use \"off\" to disable)")
	}
	if c.Suggestions < 1 {
		return fmt.Errorf("suggestions must be at least 1, got %d", c.Suggestions)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// JournalEnabled reports whether a journal should be opened.
func (c Config) JournalEnabled() bool {
	return c.Journal != JournalOff
}
