package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclink-dev/reclink/domain"
)

type stubMatchService struct {
	response *domain.MatchResponse
	err      error
	lastReq  *domain.MatchRequest
}

func (s *stubMatchService) Match(ctx context.Context, req *domain.MatchRequest) (*domain.MatchResponse, error) {
	s.lastReq = req
	return s.response, s.err
}

func (s *stubMatchService) MatchRecords(ctx context.Context, products []domain.ProductRecord, listings []domain.ListingRecord, req *domain.MatchRequest) (*domain.MatchResponse, error) {
	s.lastReq = req
	return s.response, s.err
}

type stubFormatter struct {
	err    error
	called bool
}

func (s *stubFormatter) FormatMatchResponse(response *domain.MatchResponse, req *domain.MatchRequest, writer io.Writer) error {
	s.called = true
	if s.err != nil {
		return s.err
	}
	_, err := writer.Write([]byte("formatted\n"))
	return err
}

type stubConfigLoader struct {
	config *domain.MatchRequest
	err    error
	saved  *domain.MatchRequest
}

func (s *stubConfigLoader) LoadMatchConfig(configPath string) (*domain.MatchRequest, error) {
	return s.config, s.err
}

func (s *stubConfigLoader) SaveMatchConfig(config *domain.MatchRequest, configPath string) error {
	s.saved = config
	return s.err
}

func (s *stubConfigLoader) GetDefaultMatchConfig() *domain.MatchRequest {
	return domain.DefaultMatchRequest()
}

type passthroughReportWriter struct{}

func (passthroughReportWriter) Write(writer io.Writer, outputPath string, writeFunc func(io.Writer) error) error {
	return writeFunc(writer)
}

func successResponse() *domain.MatchResponse {
	return &domain.MatchResponse{
		Results:    []*domain.ProductMatches{},
		Pairs:      []domain.MatchPair{},
		Statistics: &domain.MatchStatistics{},
		Success:    true,
	}
}

func validRequest(out io.Writer) domain.MatchRequest {
	req := domain.DefaultMatchRequest()
	req.ProductsPath = "products.jsonl"
	req.ListingsPath = "listings.jsonl"
	req.OutputWriter = out
	return *req
}

func TestMatchUseCaseExecute(t *testing.T) {
	var buf bytes.Buffer
	service := &stubMatchService{response: successResponse()}
	formatter := &stubFormatter{}

	uc := NewMatchUseCase(service, formatter, &stubConfigLoader{}, passthroughReportWriter{})

	err := uc.Execute(context.Background(), validRequest(&buf))
	require.NoError(t, err)
	assert.True(t, formatter.called)
	assert.Equal(t, "formatted\n", buf.String())
}

func TestMatchUseCaseExecute_ValidationFailure(t *testing.T) {
	var buf bytes.Buffer
	uc := NewMatchUseCase(&stubMatchService{}, &stubFormatter{}, &stubConfigLoader{}, passthroughReportWriter{})

	req := validRequest(&buf)
	req.ProductsPath = ""

	err := uc.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestMatchUseCaseExecute_ServiceFailure(t *testing.T) {
	var buf bytes.Buffer
	service := &stubMatchService{err: errors.New("boom")}
	uc := NewMatchUseCase(service, &stubFormatter{}, &stubConfigLoader{}, passthroughReportWriter{})

	err := uc.Execute(context.Background(), validRequest(&buf))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matching failed")
}

func TestMatchUseCaseExecute_NoOutputWriter(t *testing.T) {
	uc := NewMatchUseCase(&stubMatchService{response: successResponse()}, &stubFormatter{}, &stubConfigLoader{}, passthroughReportWriter{})

	req := validRequest(nil)
	req.OutputWriter = nil
	req.OutputPath = ""

	err := uc.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid output writer")
}

func TestMatchUseCaseExecute_MergesConfigFile(t *testing.T) {
	var buf bytes.Buffer

	fileConfig := domain.DefaultMatchRequest()
	fileConfig.SimThreshold = 0.8
	fileConfig.Seed = 42
	fileConfig.ProductsPath = "config-products.jsonl"
	fileConfig.ListingsPath = "config-listings.jsonl"

	service := &stubMatchService{response: successResponse()}
	uc := NewMatchUseCase(service, &stubFormatter{}, &stubConfigLoader{config: fileConfig}, passthroughReportWriter{})

	req := validRequest(&buf)
	req.ConfigPath = ".reclink.toml"
	req.Seed = 7 // explicit request value wins over the file

	require.NoError(t, uc.Execute(context.Background(), req))

	require.NotNil(t, service.lastReq)
	assert.Equal(t, 0.8, service.lastReq.SimThreshold)
	assert.Equal(t, int64(7), service.lastReq.Seed)
	// CLI paths take precedence over config file paths
	assert.Equal(t, "products.jsonl", service.lastReq.ProductsPath)
}

func TestMatchUseCaseExecute_ConfigLoadFailure(t *testing.T) {
	var buf bytes.Buffer
	uc := NewMatchUseCase(&stubMatchService{}, &stubFormatter{}, &stubConfigLoader{err: errors.New("bad toml")}, passthroughReportWriter{})

	req := validRequest(&buf)
	req.ConfigPath = ".reclink.toml"

	err := uc.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestMatchUseCaseBuilder(t *testing.T) {
	uc, err := NewMatchUseCaseBuilder().
		WithService(&stubMatchService{}).
		WithFormatter(&stubFormatter{}).
		WithConfigLoader(&stubConfigLoader{}).
		WithReportWriter(passthroughReportWriter{}).
		Build()
	require.NoError(t, err)
	assert.NotNil(t, uc)
}

func TestMatchUseCaseBuilder_MissingDependency(t *testing.T) {
	_, err := NewMatchUseCaseBuilder().
		WithFormatter(&stubFormatter{}).
		WithConfigLoader(&stubConfigLoader{}).
		WithReportWriter(passthroughReportWriter{}).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match service is required")
}

func TestMatchUseCaseSaveConfiguration(t *testing.T) {
	loader := &stubConfigLoader{}
	uc := NewMatchUseCase(&stubMatchService{}, &stubFormatter{}, loader, passthroughReportWriter{})

	req := *domain.DefaultMatchRequest()
	require.NoError(t, uc.SaveConfiguration(req, ".reclink.toml"))
	require.NotNil(t, loader.saved)
}
