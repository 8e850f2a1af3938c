package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// ValidateTempDir checks that a configured temp_dir exists.
func (c *Config) ValidateTempDir() error {
	if c.TempDir == "" {
		return nil
	}
	info, err := os.Stat(c.TempDir)
	if err != nil {
		return fmt.Errorf("temp directory does not exist: %s\nHint: Create the directory or use --temp-dir to specify a different path", c.TempDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("temp_dir is not a directory: %s", c.TempDir)
	}
	return nil
}

// NewLogger builds the CLI logger writing to w from log_level and log_format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// ConfigKey returns the context key used for storing the loaded config.
func ConfigKey() interface{} {
	return configKey{}
}

// GetConfig retrieves the config from the command context, falling back to
// defaults.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}
