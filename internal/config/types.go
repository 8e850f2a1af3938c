// Package config provides the shared runtime configuration for hybrid
// tooling. It is decoupled from CLI concerns so other front ends can load
// the same hybrid.yaml.
package config

import "time"

// RuntimeConfig holds the settings that shape how modules are loaded and run.
type RuntimeConfig struct {
	TempDir       string        `koanf:"temp_dir"`       // base for scoped temp units; OS default when empty
	MaxSteps      uint64        `koanf:"max_steps"`      // Starlark step limit per call; 0 = unlimited
	LogLevel      string        `koanf:"log_level"`      // debug, info, warn, error
	LogFormat     string        `koanf:"log_format"`     // text, json
	Output        string        `koanf:"output"`         // auto, text, json, yaml
	WatchDebounce time.Duration `koanf:"watch_debounce"` // quiet period before a watched file is reloaded
}
