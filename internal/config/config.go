// Package config provides configuration management for sxnet.
//
// Config file locations (priority order):
//  1. $SXNET_CONFIG
//  2. ./sxnet.yaml
//  3. $XDG_CONFIG_HOME/sxnet/config.yaml
//  4. ~/.config/sxnet/config.yaml
//  5. /etc/sxnet/config.yaml
//
// With no config file the defaults analyze a sosreport layout and print text to stdout.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// validate is a singleton validator instance
var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads and validates config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the configuration used when no file is found
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Output:   OutputConfig{Format: FormatText},
		Database: DatabaseConfig{Path: "./sxnet.db"},
		Analysis: AnalysisConfig{Concurrency: 4},
		Sources:  DefaultSources(),
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Database.Path == "" {
		c.Database.Path = defaults.Database.Path
	}
	if c.Analysis.Concurrency == 0 {
		c.Analysis.Concurrency = defaults.Analysis.Concurrency
	}

	src, def := &c.Sources, defaults.Sources
	for _, pair := range []struct {
		field *[]string
		def   []string
	}{
		{&src.Hosts, def.Hosts},
		{&src.IPAddress, def.IPAddress},
		{&src.Ifconfig, def.Ifconfig},
		{&src.Modprobe, def.Modprobe},
		{&src.ModprobeDirs, def.ModprobeDirs},
		{&src.ProcNetDirs, def.ProcNetDirs},
		{&src.Hostname, def.Hostname},
		{&src.Uname, def.Uname},
		{&src.Uptime, def.Uptime},
		{&src.Release, def.Release},
	} {
		if len(*pair.field) == 0 {
			*pair.field = pair.def
		}
	}
	if src.IfcfgDir == "" {
		src.IfcfgDir = def.IfcfgDir
	}
	if src.CommandsDir == "" {
		src.CommandsDir = def.CommandsDir
	}
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError reports the first failing field in a readable form
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required", "required_if":
			return fmt.Errorf("invalid config: %s is required", field)
		case "oneof":
			return fmt.Errorf("invalid config: %s must be one of [%s], got %q", field, e.Param(), e.Value())
		case "min":
			return fmt.Errorf("invalid config: %s must be at least %s", field, e.Param())
		case "max":
			return fmt.Errorf("invalid config: %s must not exceed %s", field, e.Param())
		default:
			return fmt.Errorf("invalid config: %s failed %s", field, e.Tag())
		}
	}
	return fmt.Errorf("invalid config: %w", err)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Output: %s", c.Output.Format)
	if c.Output.Dir != "" {
		summary += fmt.Sprintf(" -> %s", c.Output.Dir)
	}
	summary += fmt.Sprintf(", Concurrency: %d", c.Analysis.Concurrency)
	if c.Analysis.Timeout > 0 {
		summary += fmt.Sprintf(", Timeout: %s", c.Analysis.Timeout.Duration())
	}
	if c.Database.Enabled {
		summary += fmt.Sprintf(", Snapshots: %s", c.Database.Path)
	}
	if c.Metrics.Textfile != "" {
		summary += fmt.Sprintf(", Metrics: %s", c.Metrics.Textfile)
	}
	return summary
}
