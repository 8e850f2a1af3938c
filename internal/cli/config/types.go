// Package config provides configuration management for the hybrid CLI.
//
// It layers defaults, hybrid.yaml, HYBRID_* environment variables and
// command-line flags over the shared runtime settings in internal/config.
package config

import (
	intconfig "github.com/leapstack-labs/hybrid/internal/config"
)

// RuntimeConfig is an alias for the shared runtime configuration.
type RuntimeConfig = intconfig.RuntimeConfig

// Config holds all CLI configuration options.
type Config struct {
	RuntimeConfig `koanf:",squash"`

	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-"`
	// ProjectRoot is the directory relative paths in ConfigFile resolve against.
	ProjectRoot string `koanf:"-"`
}

// EnvPrefix is the prefix of environment variables read by LoadConfig.
const EnvPrefix = "HYBRID_"

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultLogLevel  = intconfig.DefaultLogLevel
	DefaultLogFormat = intconfig.DefaultLogFormat
	DefaultOutput    = intconfig.DefaultOutput
)

// Default returns a Config holding only default values.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
