package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// YamlFileName is the YAML compatibility configuration file, consulted
// only when no .reclink.toml exists
const YamlFileName = ".reclink.yaml"

// Config represents the main configuration structure
type Config struct {
	// Matching holds the S-curve and hash family tuning
	Matching MatchingConfig `mapstructure:"matching" toml:"matching" yaml:"matching"`

	// Input holds record file locations and patterns
	Input InputConfig `mapstructure:"input" toml:"input" yaml:"input"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" toml:"output" yaml:"output"`

	// Performance holds parallelism configuration
	Performance PerformanceConfig `mapstructure:"performance" toml:"performance" yaml:"performance"`
}

// MatchingConfig holds the tunable matching parameters
type MatchingConfig struct {
	// SimThreshold is the Jaccard similarity the S-curve is anchored at
	SimThreshold float64 `mapstructure:"sim_threshold" toml:"sim_threshold" yaml:"sim_threshold"`

	// ProbAtThreshold is the desired collision probability at SimThreshold
	ProbAtThreshold float64 `mapstructure:"prob_at_threshold" toml:"prob_at_threshold" yaml:"prob_at_threshold"`

	// MaxSignatureLength bounds the band-parameter search; widen it when
	// the solver reports the curve as unsatisfiable
	MaxSignatureLength int `mapstructure:"max_signature_length" toml:"max_signature_length" yaml:"max_signature_length"`

	// Seed drives hash family generation for reproducible runs
	Seed int64 `mapstructure:"seed" toml:"seed" yaml:"seed"`

	// TieBreak decides multi-candidate handling: all, first, unique
	TieBreak string `mapstructure:"tie_break" toml:"tie_break" yaml:"tie_break"`
}

// InputConfig holds record input configuration
type InputConfig struct {
	// Products is a path or glob pattern for catalog record files
	Products string `mapstructure:"products" toml:"products" yaml:"products"`

	// Listings is a path or glob pattern for listing record files
	Listings string `mapstructure:"listings" toml:"listings" yaml:"listings"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" toml:"format" yaml:"format"`

	// SortBy specifies how to sort results: product, matches, name
	SortBy string `mapstructure:"sort_by" toml:"sort_by" yaml:"sort_by"`

	// ShowDetails controls whether band and index statistics are shown
	ShowDetails bool `mapstructure:"show_details" toml:"show_details" yaml:"show_details"`

	// SkipUnmatched omits products without matched listings
	SkipUnmatched bool `mapstructure:"skip_unmatched" toml:"skip_unmatched" yaml:"skip_unmatched"`

	// Path writes the report to a file instead of stdout when non-empty
	Path string `mapstructure:"path" toml:"path" yaml:"path"`
}

// PerformanceConfig holds parallelism configuration
type PerformanceConfig struct {
	// MaxWorkers caps the listing matching fan-out; 0 means one worker
	// per CPU
	MaxWorkers int `mapstructure:"max_workers" toml:"max_workers" yaml:"max_workers"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Matching: MatchingConfig{
			SimThreshold:       0.975,
			ProbAtThreshold:    0.99,
			MaxSignatureLength: 512,
			Seed:               1,
			TieBreak:           "all",
		},
		Output: OutputConfig{
			Format: "text",
			SortBy: "product",
		},
		Performance: PerformanceConfig{
			MaxWorkers: 0,
		},
	}
}

// LoadConfig loads configuration via viper. An explicit path wins;
// otherwise .reclink.yaml is searched in the working directory. A
// missing file is not an error and yields defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".reclink")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	cfg := DefaultConfig()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && (errors.As(err, &notFound) || os.IsNotExist(err)) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadProjectConfig loads configuration discovered upward from workDir.
// A .reclink.toml wins; when none exists a .reclink.yaml is read via
// viper; when neither exists defaults are returned.
func LoadProjectConfig(workDir string) (*Config, error) {
	if path := FindConfigFile(workDir, TomlFileName); path != "" {
		return NewTomlConfigLoader().LoadConfigFile(path)
	}
	if path := FindConfigFile(workDir, YamlFileName); path != "" {
		return LoadConfig(path)
	}
	return DefaultConfig(), nil
}

// LoadConfigPath loads an explicit configuration file, dispatching on
// the extension: .yaml/.yml through viper, everything else as TOML
func LoadConfigPath(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadConfig(path)
	default:
		return NewTomlConfigLoader().LoadConfigFile(path)
	}
}

// FindConfigFile walks up from startDir looking for name, returning the
// empty string when no file exists
func FindConfigFile(startDir, name string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
