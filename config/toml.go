package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// StarterProjectConfig is the shape of the per-project TOML file the CLI's
// init command writes, analogous to the teacher's project-local TOML
// config — distinct from the process-wide YAML Config above, which
// governs iteration/temperature defaults rather than per-project settings.
type StarterProjectConfig struct {
	ProjectRoot    string   `toml:"project_root"`
	DefaultModel   string   `toml:"default_model"`
	AllowSensitive []string `toml:"allow_sensitive"`
}

// WriteStarterProjectConfig writes a starter TOML config file at path,
// failing if one already exists there.
func WriteStarterProjectConfig(path string, cfg StarterProjectConfig) error {
	if _, err := os.Stat(path); err == nil {
		return os.ErrExist
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ReadStarterProjectConfig reads a project's TOML config file written by
// WriteStarterProjectConfig.
func ReadStarterProjectConfig(path string) (StarterProjectConfig, error) {
	var cfg StarterProjectConfig
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
