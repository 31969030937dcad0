// Package config loads settings for the mathspan command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "mathspan.yaml"

// Env var names that override file settings.
const (
	EnvLogLevel  = "MATHSPAN_LOG_LEVEL"
	EnvLogFormat = "MATHSPAN_LOG_FORMAT"
	EnvFormat    = "MATHSPAN_FORMAT"
	EnvIndent    = "MATHSPAN_INDENT"
	EnvColor     = "MATHSPAN_COLOR"
	EnvWorkers   = "MATHSPAN_WORKERS"
	EnvMaxBytes  = "MATHSPAN_MAX_REQUEST_BYTES"
	EnvMaxBatch  = "MATHSPAN_MAX_BATCH"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level"`  // debug | info | warn | error
		Format string `yaml:"format"` // text | json
	} `yaml:"log"`
	Output struct {
		Format string `yaml:"format"` // exporter name, svg or tree
		Indent bool   `yaml:"indent"` // pretty-print JSON
		Color  string `yaml:"color"`  // auto | always | never
	} `yaml:"output"`
	Batch struct {
		Workers int `yaml:"workers"`
	} `yaml:"batch"`
	Serve struct {
		MaxRequestBytes int `yaml:"max_request_bytes"` // longest accepted request line
		MaxBatch        int `yaml:"max_batch"`         // sources per compile_batch
	} `yaml:"serve"`
}

// Default returns the built-in settings.
func Default() *Config {
	var cfg Config
	cfg.Log.Level = "warn"
	cfg.Log.Format = "text"
	cfg.Output.Format = "svg"
	cfg.Output.Color = "auto"
	cfg.Batch.Workers = 4
	cfg.Serve.MaxRequestBytes = 1 << 20
	cfg.Serve.MaxBatch = 256
	return &cfg
}

// Load reads settings: defaults, then .env, then the YAML file at path, then
// MATHSPAN_* variables. A missing file is an error only when path was given
// explicitly; an empty path falls back to DefaultPath if it exists.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config: %w", err)
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv(EnvColor); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv(EnvIndent); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvIndent, err)
		}
		c.Output.Indent = b
	}
	for key, dst := range map[string]*int{
		EnvWorkers:  &c.Batch.Workers,
		EnvMaxBytes: &c.Serve.MaxRequestBytes,
		EnvMaxBatch: &c.Serve.MaxBatch,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	switch strings.ToLower(c.Output.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("config: unknown color mode %q", c.Output.Color)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("config: batch workers must be positive, got %d", c.Batch.Workers)
	}
	if c.Serve.MaxRequestBytes < 1 {
		return fmt.Errorf("config: serve max_request_bytes must be positive, got %d", c.Serve.MaxRequestBytes)
	}
	if c.Serve.MaxBatch < 1 {
		return fmt.Errorf("config: serve max_batch must be positive, got %d", c.Serve.MaxBatch)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return l, nil
}
