package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reclink-dev/reclink/app"
	"github.com/reclink-dev/reclink/domain"
	"github.com/reclink-dev/reclink/internal/config"
	"github.com/reclink-dev/reclink/service"
)

// MatchCommand handles the match CLI command
type MatchCommand struct {
	configFile string

	// S-curve tuning
	simThreshold       float64
	probAtThreshold    float64
	maxSignatureLength int
	seed               int64

	// Candidate handling
	tieBreak string

	// Output format flags (only one should be true)
	json bool
	yaml bool
	csv  bool

	// Output options
	showDetails   bool
	skipUnmatched bool
	sortBy        string
	outputPath    string

	// Performance options
	workers int
}

// NewMatchCommand creates a new match command
func NewMatchCommand() *MatchCommand {
	return &MatchCommand{
		simThreshold:       domain.DefaultSimThreshold,
		probAtThreshold:    domain.DefaultProbAtThreshold,
		maxSignatureLength: domain.DefaultMaxSignatureLength,
		seed:               domain.DefaultSeed,
		tieBreak:           string(domain.TieBreakAll),
		sortBy:             string(domain.SortByProduct),
	}
}

// CreateCobraCommand creates the Cobra command for matching
func (m *MatchCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <products> <listings>",
		Short: "Match catalog records against listings",
		Long: `Match product catalog records against unstructured listings.

Both inputs are JSONL files (one JSON object per line) or glob patterns
matching several shard files. Products carry "product_name",
"manufacturer" and "model" fields; listings carry "title" and
"manufacturer".

The similarity threshold and detection probability control the banding
curve: a listing whose token set has Jaccard similarity of at least
--sim-threshold with a product is found with probability at least
--prob-at-threshold.

Examples:
  # Match with default thresholds
  reclink match products.jsonl listings.jsonl

  # Looser matching over sharded inputs
  reclink match --sim-threshold 0.8 "products/*.jsonl" "listings/*.jsonl"

  # Emit one pair per listing and write JSON to a file
  reclink match --tie-break first --json -o pairs.json products.jsonl listings.jsonl`,
		Args: cobra.ExactArgs(2),
		RunE: m.runMatch,
	}

	cmd.Flags().StringVarP(&m.configFile, "config", "c", m.configFile,
		"Path to configuration file")

	cmd.Flags().Float64VarP(&m.simThreshold, "sim-threshold", "s", m.simThreshold,
		"Jaccard similarity threshold the banding is tuned for (0.0-1.0)")
	cmd.Flags().Float64VarP(&m.probAtThreshold, "prob-at-threshold", "p", m.probAtThreshold,
		"Desired detection probability at the similarity threshold (0.0-1.0)")
	cmd.Flags().IntVar(&m.maxSignatureLength, "max-signature-length", m.maxSignatureLength,
		"Upper bound on the MinHash signature length")
	cmd.Flags().Int64Var(&m.seed, "seed", m.seed,
		"Hash family seed for reproducible runs")

	cmd.Flags().StringVar(&m.tieBreak, "tie-break", m.tieBreak,
		"Multi-candidate handling: all, first, unique")

	cmd.Flags().BoolVar(&m.json, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&m.yaml, "yaml", false, "Output results as YAML")
	cmd.Flags().BoolVar(&m.csv, "csv", false, "Output match pairs as CSV")

	cmd.Flags().BoolVarP(&m.showDetails, "details", "d", m.showDetails,
		"Show band configuration and index statistics")
	cmd.Flags().BoolVar(&m.skipUnmatched, "skip-unmatched", m.skipUnmatched,
		"Omit products without matched listings")
	cmd.Flags().StringVar(&m.sortBy, "sort", m.sortBy,
		"Sort results by: product, matches, name")
	cmd.Flags().StringVarP(&m.outputPath, "output", "o", m.outputPath,
		"Write the report to a file instead of stdout")

	cmd.Flags().IntVarP(&m.workers, "workers", "w", m.workers,
		"Worker goroutines for listing matching (0 = one per CPU)")

	return cmd
}

// runMatch executes the match command
func (m *MatchCommand) runMatch(cmd *cobra.Command, args []string) error {
	request, err := m.createMatchRequest(cmd, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to create match request: %w", err)
	}

	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	useCase, err := m.createMatchUseCase(cmd)
	if err != nil {
		return fmt.Errorf("failed to create match use case: %w", err)
	}

	if err := useCase.Execute(context.Background(), *request); err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	return nil
}

// createMatchRequest creates a match request from configuration and flags
func (m *MatchCommand) createMatchRequest(cmd *cobra.Command, productsPath, listingsPath string) (*domain.MatchRequest, error) {
	cfg, err := m.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	m.applyCliOverrides(cfg, GetExplicitFlags(cmd))

	outputFormat, err := m.determineOutputFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	sortBy, err := m.parseSortCriteria(cfg.Output.SortBy)
	if err != nil {
		return nil, err
	}

	tieBreak := domain.TieBreakPolicy(cfg.Matching.TieBreak)
	if !tieBreak.IsValid() {
		return nil, fmt.Errorf("unsupported tie-break policy: %s (supported: all, first, unique)", cfg.Matching.TieBreak)
	}

	request := &domain.MatchRequest{
		ProductsPath:       productsPath,
		ListingsPath:       listingsPath,
		SimThreshold:       cfg.Matching.SimThreshold,
		ProbAtThreshold:    cfg.Matching.ProbAtThreshold,
		MaxSignatureLength: cfg.Matching.MaxSignatureLength,
		Seed:               cfg.Matching.Seed,
		TieBreak:           tieBreak,
		MaxWorkers:         cfg.Performance.MaxWorkers,
		OutputFormat:       outputFormat,
		OutputWriter:       cmd.OutOrStdout(),
		OutputPath:         cfg.Output.Path,
		SortBy:             sortBy,
		ShowDetails:        cfg.Output.ShowDetails,
		SkipUnmatched:      cfg.Output.SkipUnmatched,
	}

	return request, nil
}

// loadConfig loads configuration. An explicit --config path wins
// (.yaml/.yml files go through viper, everything else is TOML);
// otherwise .reclink.toml then .reclink.yaml are searched upward from
// the working directory.
func (m *MatchCommand) loadConfig() (*config.Config, error) {
	if m.configFile != "" {
		return config.LoadConfigPath(m.configFile)
	}
	return config.LoadProjectConfig(".")
}

// applyCliOverrides applies CLI flag overrides to config.
// Only flags the user explicitly set override file values.
func (m *MatchCommand) applyCliOverrides(cfg *config.Config, explicit map[string]bool) {
	if explicit["sim-threshold"] {
		cfg.Matching.SimThreshold = m.simThreshold
	}
	if explicit["prob-at-threshold"] {
		cfg.Matching.ProbAtThreshold = m.probAtThreshold
	}
	if explicit["max-signature-length"] {
		cfg.Matching.MaxSignatureLength = m.maxSignatureLength
	}
	if explicit["seed"] {
		cfg.Matching.Seed = m.seed
	}
	if explicit["tie-break"] {
		cfg.Matching.TieBreak = m.tieBreak
	}
	if explicit["sort"] {
		cfg.Output.SortBy = m.sortBy
	}
	if explicit["details"] {
		cfg.Output.ShowDetails = m.showDetails
	}
	if explicit["skip-unmatched"] {
		cfg.Output.SkipUnmatched = m.skipUnmatched
	}
	if explicit["output"] {
		cfg.Output.Path = m.outputPath
	}
	if explicit["workers"] {
		cfg.Performance.MaxWorkers = m.workers
	}
}

// determineOutputFormat determines the output format based on flags
func (m *MatchCommand) determineOutputFormat(configured string) (domain.OutputFormat, error) {
	count := 0
	for _, set := range []bool{m.json, m.yaml, m.csv} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", fmt.Errorf("only one of --json, --yaml, --csv may be given")
	}

	switch {
	case m.json:
		return domain.OutputFormatJSON, nil
	case m.yaml:
		return domain.OutputFormatYAML, nil
	case m.csv:
		return domain.OutputFormatCSV, nil
	}

	if configured != "" {
		format := domain.OutputFormat(configured)
		if !format.IsValid() {
			return "", fmt.Errorf("unsupported output format: %s", configured)
		}
		return format, nil
	}
	return domain.OutputFormatText, nil
}

// parseSortCriteria parses and validates the sort criteria
func (m *MatchCommand) parseSortCriteria(sort string) (domain.SortCriteria, error) {
	switch strings.ToLower(sort) {
	case "", "product":
		return domain.SortByProduct, nil
	case "matches":
		return domain.SortByMatches, nil
	case "name":
		return domain.SortByName, nil
	default:
		return "", fmt.Errorf("unsupported sort criteria: %s (supported: product, matches, name)", sort)
	}
}

// createMatchUseCase creates a match use case with all dependencies
func (m *MatchCommand) createMatchUseCase(cmd *cobra.Command) (*app.MatchUseCase, error) {
	matchService := service.NewMatchService()
	formatter := service.NewMatchOutputFormatter()
	configLoader := service.NewMatchConfigurationLoader()

	return app.NewMatchUseCaseBuilder().
		WithService(matchService).
		WithFormatter(formatter).
		WithConfigLoader(configLoader).
		WithReportWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}

// NewMatchCmd creates and returns the match cobra command
func NewMatchCmd() *cobra.Command {
	matchCommand := NewMatchCommand()
	return matchCommand.CreateCobraCommand()
}
