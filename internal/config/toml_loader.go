package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TomlFileName is the project configuration file discovered upward from
// the working directory
const TomlFileName = ".reclink.toml"

// TomlConfigLoader loads .reclink.toml configuration
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads configuration, searching for .reclink.toml upward
// from workDir. Values not present in the file keep their defaults; a
// missing file yields pure defaults.
func (l *TomlConfigLoader) LoadConfig(workDir string) (*Config, error) {
	cfg := DefaultConfig()

	path := FindConfigFile(workDir, TomlFileName)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadConfigFile loads configuration from an explicit TOML file
func (l *TomlConfigLoader) LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as TOML
func (l *TomlConfigLoader) Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
