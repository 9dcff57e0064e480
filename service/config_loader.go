package service

import (
	"fmt"
	"os"

	"github.com/reclink-dev/reclink/domain"
	"github.com/reclink-dev/reclink/internal/config"
)

// MatchConfigurationLoaderImpl implements the domain.MatchConfigurationLoader interface
type MatchConfigurationLoaderImpl struct{}

// NewMatchConfigurationLoader creates a new match configuration loader
func NewMatchConfigurationLoader() *MatchConfigurationLoaderImpl {
	return &MatchConfigurationLoaderImpl{}
}

// LoadMatchConfig loads match configuration from file. Explicit
// .yaml/.yml paths go through viper, everything else is TOML; with no
// path, .reclink.toml then .reclink.yaml are searched upward from the
// working directory.
func (c *MatchConfigurationLoaderImpl) LoadMatchConfig(configPath string) (*domain.MatchRequest, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfigPath(configPath)
	} else {
		cfg, err = config.LoadProjectConfig(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return c.configToMatchRequest(cfg), nil
}

// SaveMatchConfig saves match configuration to a TOML file
func (c *MatchConfigurationLoaderImpl) SaveMatchConfig(request *domain.MatchRequest, configPath string) error {
	loader := config.NewTomlConfigLoader()

	// Load existing config so unrelated sections survive the save
	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := loader.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	c.updateConfigFromMatchRequest(cfg, request)

	return loader.Save(cfg, configPath)
}

// GetDefaultMatchConfig returns default match configuration, honoring a
// discovered .reclink.toml when one exists
func (c *MatchConfigurationLoaderImpl) GetDefaultMatchConfig() *domain.MatchRequest {
	if path := config.FindConfigFile(".", config.TomlFileName); path != "" {
		if req, err := c.LoadMatchConfig(path); err == nil {
			return req
		}
		// If loading failed, fall back to hardcoded defaults
	}

	return c.configToMatchRequest(config.DefaultConfig())
}

// configToMatchRequest converts a config.Config to domain.MatchRequest
func (c *MatchConfigurationLoaderImpl) configToMatchRequest(cfg *config.Config) *domain.MatchRequest {
	req := domain.DefaultMatchRequest()

	req.ProductsPath = cfg.Input.Products
	req.ListingsPath = cfg.Input.Listings

	req.SimThreshold = cfg.Matching.SimThreshold
	req.ProbAtThreshold = cfg.Matching.ProbAtThreshold
	req.MaxSignatureLength = cfg.Matching.MaxSignatureLength
	req.Seed = cfg.Matching.Seed

	if policy := domain.TieBreakPolicy(cfg.Matching.TieBreak); policy.IsValid() {
		req.TieBreak = policy
	}

	if format := domain.OutputFormat(cfg.Output.Format); format.IsValid() {
		req.OutputFormat = format
	}
	if cfg.Output.SortBy != "" {
		req.SortBy = domain.SortCriteria(cfg.Output.SortBy)
	}
	req.ShowDetails = cfg.Output.ShowDetails
	req.SkipUnmatched = cfg.Output.SkipUnmatched
	req.OutputPath = cfg.Output.Path

	req.MaxWorkers = cfg.Performance.MaxWorkers

	return req
}

// updateConfigFromMatchRequest writes request values back into the
// matching sections of a config
func (c *MatchConfigurationLoaderImpl) updateConfigFromMatchRequest(cfg *config.Config, req *domain.MatchRequest) {
	cfg.Input.Products = req.ProductsPath
	cfg.Input.Listings = req.ListingsPath

	cfg.Matching.SimThreshold = req.SimThreshold
	cfg.Matching.ProbAtThreshold = req.ProbAtThreshold
	cfg.Matching.MaxSignatureLength = req.MaxSignatureLength
	cfg.Matching.Seed = req.Seed
	cfg.Matching.TieBreak = string(req.TieBreak)

	cfg.Output.Format = string(req.OutputFormat)
	cfg.Output.SortBy = string(req.SortBy)
	cfg.Output.ShowDetails = req.ShowDetails
	cfg.Output.SkipUnmatched = req.SkipUnmatched
	cfg.Output.Path = req.OutputPath

	cfg.Performance.MaxWorkers = req.MaxWorkers
}
