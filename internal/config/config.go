// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Failure modes for script runs.
const (
	FailureContinue = "continue"
	FailureAbort    = "abort"
)

// Config holds all contacts configuration.
type Config struct {
	Log     Log     `yaml:"log"`
	Run     Run     `yaml:"run"`
	Display Display `yaml:"display"`
	Shell   Shell   `yaml:"shell"`
}

// Log holds logger settings.
type Log struct {
	Mode   string `yaml:"mode"`   // "off" | "dev" | "prod"
	Redact bool   `yaml:"redact"` // Mask phone, names, and address in log output
}

// Run holds script execution settings.
type Run struct {
	FailureMode string `yaml:"failure_mode"` // "continue" | "abort"
}

// Display holds step display settings.
type Display struct {
	Plain bool `yaml:"plain"` // Force plain text even on a TTY
}

// Shell holds interactive shell settings.
type Shell struct {
	Prompt  string `yaml:"prompt"`
	History int    `yaml:"history"` // Transcript lines kept in the shell
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log: Log{
			Mode:   "off",
			Redact: true,
		},
		Run: Run{
			FailureMode: FailureContinue,
		},
		Shell: Shell{
			Prompt:  "> ",
			History: 200,
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Log.Mode {
	case "", "off", "dev", "prod":
		// valid
	default:
		return fmt.Errorf("config: log.mode must be \"off\", \"dev\", or \"prod\", got %q", c.Log.Mode)
	}
	switch c.Run.FailureMode {
	case "", FailureContinue, FailureAbort:
		// valid
	default:
		return fmt.Errorf("config: run.failure_mode must be \"continue\" or \"abort\", got %q", c.Run.FailureMode)
	}
	if c.Shell.History <= 0 {
		return fmt.Errorf("config: shell.history must be positive, got %d", c.Shell.History)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTS_LOG_MODE, CONTACTS_FAILURE_MODE, CONTACTS_PLAIN,
// CONTACTS_SHELL_PROMPT.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CONTACTS_LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := os.Getenv("CONTACTS_FAILURE_MODE"); v != "" {
		c.Run.FailureMode = v
	}
	if v := os.Getenv("CONTACTS_PLAIN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTS_PLAIN %q: %w", v, err)
		}
		c.Display.Plain = b
	}
	if v := os.Getenv("CONTACTS_SHELL_PROMPT"); v != "" {
		c.Shell.Prompt = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Log     *rawLog     `yaml:"log"`
	Run     *rawRun     `yaml:"run"`
	Display *rawDisplay `yaml:"display"`
	Shell   *rawShell   `yaml:"shell"`
}

type rawLog struct {
	Mode   *string `yaml:"mode"`
	Redact *bool   `yaml:"redact"`
}

type rawRun struct {
	FailureMode *string `yaml:"failure_mode"`
}

type rawDisplay struct {
	Plain *bool `yaml:"plain"`
}

type rawShell struct {
	Prompt  *string `yaml:"prompt"`
	History *int    `yaml:"history"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Log != nil {
		if layer.Log.Mode != nil {
			c.Log.Mode = *layer.Log.Mode
		}
		if layer.Log.Redact != nil {
			c.Log.Redact = *layer.Log.Redact
		}
	}
	if layer.Run != nil && layer.Run.FailureMode != nil {
		c.Run.FailureMode = *layer.Run.FailureMode
	}
	if layer.Display != nil && layer.Display.Plain != nil {
		c.Display.Plain = *layer.Display.Plain
	}
	if layer.Shell != nil {
		if layer.Shell.Prompt != nil {
			c.Shell.Prompt = *layer.Shell.Prompt
		}
		if layer.Shell.History != nil {
			c.Shell.History = *layer.Shell.History
		}
	}
}
