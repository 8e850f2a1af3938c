package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultOutput        = "auto" // Auto-detect: TTY=styled text, non-TTY=plain text
	DefaultWatchDebounce = 100 * time.Millisecond
)

// Accepted values for enumerated keys.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
	Outputs    = []string{"auto", "text", "json", "yaml"}
)

// Defaults returns the default values keyed by config key, for use with a
// koanf confmap provider.
func Defaults() map[string]any {
	return map[string]any{
		"temp_dir":       "",
		"max_steps":      0,
		"log_level":      DefaultLogLevel,
		"log_format":     DefaultLogFormat,
		"output":         DefaultOutput,
		"watch_debounce": DefaultWatchDebounce.String(),
	}
}

// ApplyDefaults fills unset fields of c.
func (c *RuntimeConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.WatchDebounce == 0 {
		c.WatchDebounce = DefaultWatchDebounce
	}
}

// Validate checks enumerated keys and ranges.
func (c *RuntimeConfig) Validate() error {
	if err := oneOf("log_level", c.LogLevel, LogLevels); err != nil {
		return err
	}
	if err := oneOf("log_format", c.LogFormat, LogFormats); err != nil {
		return err
	}
	if err := oneOf("output", c.Output, Outputs); err != nil {
		return err
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	return nil
}

func oneOf(key, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (allowed: %v)", key, value, allowed)
}
