package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateRequest(mutate func(*MatchRequest)) error {
	req := DefaultMatchRequest()
	req.ProductsPath = "products.jsonl"
	req.ListingsPath = "listings.jsonl"
	mutate(req)
	return req.Validate()
}

func TestMatchRequestValidate(t *testing.T) {
	assert.NoError(t, validateRequest(func(req *MatchRequest) {}))
}

func TestMatchRequestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MatchRequest)
		code   string
	}{
		{"empty products path", func(r *MatchRequest) { r.ProductsPath = "" }, ErrCodeInvalidInput},
		{"empty listings path", func(r *MatchRequest) { r.ListingsPath = "" }, ErrCodeInvalidInput},
		{"sim threshold zero", func(r *MatchRequest) { r.SimThreshold = 0 }, ErrCodeInvalidParameter},
		{"sim threshold one", func(r *MatchRequest) { r.SimThreshold = 1 }, ErrCodeInvalidParameter},
		{"prob negative", func(r *MatchRequest) { r.ProbAtThreshold = -0.1 }, ErrCodeInvalidParameter},
		{"prob too large", func(r *MatchRequest) { r.ProbAtThreshold = 1.5 }, ErrCodeInvalidParameter},
		{"zero signature budget", func(r *MatchRequest) { r.MaxSignatureLength = 0 }, ErrCodeInvalidParameter},
		{"negative workers", func(r *MatchRequest) { r.MaxWorkers = -1 }, ErrCodeInvalidInput},
		{"bad tie break", func(r *MatchRequest) { r.TieBreak = "random" }, ErrCodeInvalidInput},
		{"bad format", func(r *MatchRequest) { r.OutputFormat = "pdf" }, ErrCodeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.mutate)
			require.Error(t, err)
			assert.True(t, IsErrorCode(err, tt.code), "expected code %s, got %v", tt.code, err)
		})
	}
}

func TestMatchText(t *testing.T) {
	product := ProductRecord{Name: "Cyber-shot DSC-W310", Manufacturer: "Sony", Model: "DSC-W310"}
	assert.Equal(t, "Cyber-shot DSC-W310 Sony DSC-W310", product.MatchText())

	listing := ListingRecord{Title: "Sony Cyber-shot", Manufacturer: "Sony"}
	assert.Equal(t, "Sony Cyber-shot Sony", listing.MatchText())
}

func TestHasValidOutputWriter(t *testing.T) {
	req := &MatchRequest{}
	assert.False(t, req.HasValidOutputWriter())

	req.OutputPath = "report.json"
	assert.True(t, req.HasValidOutputWriter())
}

func TestTieBreakPolicyIsValid(t *testing.T) {
	assert.True(t, TieBreakAll.IsValid())
	assert.True(t, TieBreakFirst.IsValid())
	assert.True(t, TieBreakUnique.IsValid())
	assert.False(t, TieBreakPolicy("random").IsValid())
}

func TestOutputFormatIsValid(t *testing.T) {
	assert.True(t, OutputFormatText.IsValid())
	assert.True(t, OutputFormatJSON.IsValid())
	assert.True(t, OutputFormatYAML.IsValid())
	assert.True(t, OutputFormatCSV.IsValid())
	assert.False(t, OutputFormat("html").IsValid())
}

func TestBandParametersString(t *testing.T) {
	b := BandParameters{SignatureLength: 120, Bands: 40, Rows: 3, AchievedProbability: 0.9912}
	assert.Equal(t, "k=120 (bands=40, rows=3, P(collision@s)=0.9912)", b.String())
}
