// Package config loads the optional filament.yaml runtime configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	ferrors "github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

// Version is the runtime version checked against Config.Requires.
const Version = "v0.1.0"

// FileName is the configuration file looked up by LoadOptional.
const FileName = "filament.yaml"

// Config represents the optional filament.yaml configuration.
type Config struct {
	Runtime  RuntimeConfig `yaml:"runtime"`
	Logging  LoggingConfig `yaml:"logging"`
	Requires string        `yaml:"requires,omitempty"`
}

// RuntimeConfig contains scheduler settings.
type RuntimeConfig struct {
	MaxFlushPasses int `yaml:"max_flush_passes,omitempty"`
}

// LoggingConfig contains settings for the default error handler.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Runtime: RuntimeConfig{MaxFlushPasses: reactive.DefaultMaxPasses}}
}

// LoadOptional reads filament.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, configError("config.Load", fmt.Errorf("failed to read %s: %w", path, err))
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates configuration data. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, configError("config.Parse", fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and the requires constraint.
func (c *Config) Validate() error {
	if c.Runtime.MaxFlushPasses < 0 {
		return configError("config.Validate",
			fmt.Errorf("runtime.max_flush_passes must not be negative (got %d)", c.Runtime.MaxFlushPasses))
	}
	req := strings.TrimSpace(c.Requires)
	if req == "" {
		return nil
	}
	if !strings.HasPrefix(req, "v") {
		req = "v" + req
	}
	if !semver.IsValid(req) {
		return configError("config.Validate", fmt.Errorf("requires: invalid version %q", c.Requires))
	}
	if semver.Compare(req, Version) > 0 {
		return configError("config.Validate",
			fmt.Errorf("requires %s but runtime is %s", semver.Canonical(req), Version))
	}
	return nil
}

// RuntimeOptions converts the runtime section into reactive options.
func (c *Config) RuntimeOptions() []reactive.Option {
	var opts []reactive.Option
	if c.Runtime.MaxFlushPasses > 0 {
		opts = append(opts, reactive.WithMaxPasses(c.Runtime.MaxFlushPasses))
	}
	return opts
}

// ErrorHandler returns a log handler configured by the logging section,
// writing to w (stderr when nil).
func (c *Config) ErrorHandler(w io.Writer) *ferrors.LogHandler {
	return &ferrors.LogHandler{Verbose: c.Logging.Verbose, Writer: w}
}

func configError(op string, err error) error {
	return &ferrors.RuntimeError{Op: op, Kind: ferrors.KindConfig, Err: err}
}
