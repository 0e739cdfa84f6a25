// Package config loads the module's static, non-secret configuration:
// defaults for agent iteration bounds, temperature, the provider base
// URL, log level, and additions to the sensitive-path deny list. API
// keys are never stored here; see the secretmanager package.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the resolved, defaulted configuration for a process.
type Config struct {
	DefaultMaxIterations  int      `koanf:"default_max_iterations"`
	DefaultTemperature    float64  `koanf:"default_temperature"`
	DefaultBaseURL        string   `koanf:"default_base_url"`
	LogLevel              string   `koanf:"log_level"`
	ExtraSensitivePaths   []string `koanf:"extra_sensitive_paths"`
}

// Default returns the built-in defaults, used when no config file is
// present and as the base that a loaded file is merged onto.
func Default() Config {
	return Config{
		DefaultMaxIterations: 10,
		DefaultTemperature:   0.2,
		DefaultBaseURL:       "https://api.openai.com",
		LogLevel:             "info",
	}
}

// Load reads a YAML config file at path, merging it onto Default().
// A missing file is not an error; it just yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, err
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
