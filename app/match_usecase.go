package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/reclink-dev/reclink/domain"
)

// MatchUseCase orchestrates a catalog/listing match run
type MatchUseCase struct {
	service      domain.MatchService
	formatter    domain.MatchOutputFormatter
	configLoader domain.MatchConfigurationLoader
	reportWriter domain.ReportWriter
}

// NewMatchUseCase creates a new match use case with the given dependencies
func NewMatchUseCase(
	service domain.MatchService,
	formatter domain.MatchOutputFormatter,
	configLoader domain.MatchConfigurationLoader,
	reportWriter domain.ReportWriter,
) *MatchUseCase {
	return &MatchUseCase{
		service:      service,
		formatter:    formatter,
		configLoader: configLoader,
		reportWriter: reportWriter,
	}
}

// Execute executes the match use case
func (uc *MatchUseCase) Execute(ctx context.Context, req domain.MatchRequest) error {
	startTime := time.Now()

	// Load configuration if specified; request values take precedence
	if req.ConfigPath != "" {
		configReq, err := uc.configLoader.LoadMatchConfig(req.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		req = uc.mergeConfiguration(*configReq, req)
	}

	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	response, err := uc.service.Match(ctx, &req)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	response.Duration = time.Since(startTime).Milliseconds()

	if !req.HasValidOutputWriter() {
		return fmt.Errorf("no valid output writer specified")
	}

	return uc.reportWriter.Write(req.OutputWriter, req.OutputPath, func(w io.Writer) error {
		return uc.formatter.FormatMatchResponse(response, &req, w)
	})
}

// SaveConfiguration saves the current match configuration
func (uc *MatchUseCase) SaveConfiguration(req domain.MatchRequest, configPath string) error {
	if err := uc.configLoader.SaveMatchConfig(&req, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// mergeConfiguration merges configuration from file with request parameters.
// Request parameters take precedence over configuration file values.
func (uc *MatchUseCase) mergeConfiguration(configReq, requestReq domain.MatchRequest) domain.MatchRequest {
	merged := configReq

	// Paths from the command line always win when given
	if requestReq.ProductsPath != "" {
		merged.ProductsPath = requestReq.ProductsPath
	}
	if requestReq.ListingsPath != "" {
		merged.ListingsPath = requestReq.ListingsPath
	}

	// Override numeric values if they differ from defaults
	defaultReq := domain.DefaultMatchRequest()

	if requestReq.SimThreshold != defaultReq.SimThreshold {
		merged.SimThreshold = requestReq.SimThreshold
	}
	if requestReq.ProbAtThreshold != defaultReq.ProbAtThreshold {
		merged.ProbAtThreshold = requestReq.ProbAtThreshold
	}
	if requestReq.MaxSignatureLength != defaultReq.MaxSignatureLength {
		merged.MaxSignatureLength = requestReq.MaxSignatureLength
	}
	if requestReq.Seed != defaultReq.Seed {
		merged.Seed = requestReq.Seed
	}
	if requestReq.MaxWorkers != defaultReq.MaxWorkers {
		merged.MaxWorkers = requestReq.MaxWorkers
	}
	if requestReq.TieBreak != defaultReq.TieBreak {
		merged.TieBreak = requestReq.TieBreak
	}

	// Always use request values for output settings
	merged.OutputFormat = requestReq.OutputFormat
	merged.OutputWriter = requestReq.OutputWriter
	merged.SortBy = requestReq.SortBy
	merged.ShowDetails = requestReq.ShowDetails
	merged.SkipUnmatched = requestReq.SkipUnmatched
	if requestReq.OutputPath != "" {
		merged.OutputPath = requestReq.OutputPath
	}

	merged.ConfigPath = requestReq.ConfigPath

	return merged
}

// MatchUseCaseBuilder helps build MatchUseCase with dependencies
type MatchUseCaseBuilder struct {
	service      domain.MatchService
	formatter    domain.MatchOutputFormatter
	configLoader domain.MatchConfigurationLoader
	reportWriter domain.ReportWriter
}

// NewMatchUseCaseBuilder creates a new builder for MatchUseCase
func NewMatchUseCaseBuilder() *MatchUseCaseBuilder {
	return &MatchUseCaseBuilder{}
}

// WithService sets the match service
func (b *MatchUseCaseBuilder) WithService(service domain.MatchService) *MatchUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *MatchUseCaseBuilder) WithFormatter(formatter domain.MatchOutputFormatter) *MatchUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *MatchUseCaseBuilder) WithConfigLoader(configLoader domain.MatchConfigurationLoader) *MatchUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithReportWriter sets the report writer
func (b *MatchUseCaseBuilder) WithReportWriter(reportWriter domain.ReportWriter) *MatchUseCaseBuilder {
	b.reportWriter = reportWriter
	return b
}

// Build creates the MatchUseCase with the configured dependencies
func (b *MatchUseCaseBuilder) Build() (*MatchUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("match service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.configLoader == nil {
		return nil, fmt.Errorf("configuration loader is required")
	}
	if b.reportWriter == nil {
		return nil, fmt.Errorf("report writer is required")
	}

	return NewMatchUseCase(
		b.service,
		b.formatter,
		b.configLoader,
		b.reportWriter,
	), nil
}
