// Package config loads the tool's YAML run configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tableforge/internal/resolve"
)

// Config is the complete run configuration.
type Config struct {
	// Store is the tag store file path, relative to the data root.
	Store string `yaml:"store"`

	// StartThreshold is the lowest identifier fresh tag allocation may use.
	StartThreshold int64 `yaml:"start_threshold"`

	// OutputDir is where converted sheet JSON lands, relative to the root.
	OutputDir string `yaml:"output_dir"`

	Resolve  ResolveConfig  `yaml:"resolve"`
	Localize LocalizeConfig `yaml:"localize"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ResolveConfig holds placeholder resolution settings.
type ResolveConfig struct {
	// Collision is "permissive" or "strict".
	Collision string `yaml:"collision"`
}

// LocalizeConfig holds localization key derivation settings.
type LocalizeConfig struct {
	// Enabled turns key derivation on for convert runs.
	Enabled bool `yaml:"enabled"`
	// Rewrite replaces source cells with their derived keys.
	Rewrite bool `yaml:"rewrite"`
	// Out is the localization table stem; <Out>.json and <Out>.csv
	// are written next to the output directory.
	Out string `yaml:"out"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store:          "TagData.json",
		StartThreshold: resolve.DefaultConfig().StartThreshold,
		OutputDir:      "json",
		Resolve:        ResolveConfig{Collision: "permissive"},
		Localize:       LocalizeConfig{Enabled: true, Rewrite: true, Out: "LocalData"},
		Logging:        LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Store == "" {
		return fmt.Errorf("store path must not be empty")
	}
	if c.StartThreshold < 1 {
		return fmt.Errorf("start_threshold must be positive, got %d", c.StartThreshold)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if _, err := c.CollisionPolicy(); err != nil {
		return err
	}

	return nil
}

// CollisionPolicy maps the configured collision string to its policy.
func (c Config) CollisionPolicy() (resolve.CollisionPolicy, error) {
	switch c.Resolve.Collision {
	case "", "permissive":
		return resolve.CollisionPermissive, nil
	case "strict":
		return resolve.CollisionStrict, nil
	default:
		return 0, fmt.Errorf("unknown collision policy %q (want permissive or strict)", c.Resolve.Collision)
	}
}

// ResolverConfig builds the resolve package configuration.
func (c Config) ResolverConfig() (resolve.Config, error) {
	policy, err := c.CollisionPolicy()
	if err != nil {
		return resolve.Config{}, err
	}

	return resolve.Config{
		StartThreshold: c.StartThreshold,
		Collision:      policy,
	}, nil
}
