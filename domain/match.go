package domain

import (
	"context"
	"fmt"
	"io"
)

// ProductRecord is one catalog entry. IDs are assigned by the reader in
// input order and are dense and zero-based for the lifetime of a run.
type ProductRecord struct {
	ID           int    `json:"id" yaml:"id"`
	Name         string `json:"product_name" yaml:"product_name"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
}

// MatchText returns the text fields that participate in matching
func (p *ProductRecord) MatchText() string {
	return p.Name + " " + p.Manufacturer + " " + p.Model
}

// String returns string representation of ProductRecord
func (p *ProductRecord) String() string {
	return fmt.Sprintf("Product{ID: %d, Name: %q}", p.ID, p.Name)
}

// ListingRecord is one unstructured mention to be linked to the catalog
type ListingRecord struct {
	ID           int    `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
}

// MatchText returns the text fields that participate in matching
func (l *ListingRecord) MatchText() string {
	return l.Title + " " + l.Manufacturer
}

// MatchPair links one listing to one catalog product
type MatchPair struct {
	ListingID int `json:"listing_id" yaml:"listing_id" csv:"listing_id"`
	ProductID int `json:"product_id" yaml:"product_id" csv:"product_id"`
}

// ProductMatches groups the listings linked to a single product
type ProductMatches struct {
	Product  ProductRecord   `json:"product" yaml:"product"`
	Listings []ListingRecord `json:"listings" yaml:"listings"`
}

// BandParameters is the LSH configuration chosen by the parameter solver
type BandParameters struct {
	SignatureLength     int     `json:"signature_length" yaml:"signature_length"`
	Bands               int     `json:"bands" yaml:"bands"`
	Rows                int     `json:"rows" yaml:"rows"`
	AchievedProbability float64 `json:"achieved_probability" yaml:"achieved_probability"`
}

// String returns string representation of BandParameters
func (b BandParameters) String() string {
	return fmt.Sprintf("k=%d (bands=%d, rows=%d, P(collision@s)=%.4f)",
		b.SignatureLength, b.Bands, b.Rows, b.AchievedProbability)
}

// MatchStatistics summarizes a match run
type MatchStatistics struct {
	ProductsIndexed   int     `json:"products_indexed" yaml:"products_indexed"`
	ListingsProcessed int     `json:"listings_processed" yaml:"listings_processed"`
	ListingsMatched   int     `json:"listings_matched" yaml:"listings_matched"`
	MatchRate         float64 `json:"match_rate" yaml:"match_rate"`
	VocabularySize    int     `json:"vocabulary_size" yaml:"vocabulary_size"`

	// Bucket statistics of the frozen index
	IndexBuckets  int     `json:"index_buckets" yaml:"index_buckets"`
	MinBucketSize int     `json:"min_bucket_size" yaml:"min_bucket_size"`
	MaxBucketSize int     `json:"max_bucket_size" yaml:"max_bucket_size"`
	AvgBucketSize float64 `json:"avg_bucket_size" yaml:"avg_bucket_size"`
}

// TieBreakPolicy decides what to do when a listing collides with more
// than one catalog product. The index always reports the full candidate
// set; the policy is applied by the matching service.
type TieBreakPolicy string

const (
	// TieBreakAll emits a pair for every candidate product
	TieBreakAll TieBreakPolicy = "all"
	// TieBreakFirst emits only the candidate with the lowest product id
	TieBreakFirst TieBreakPolicy = "first"
	// TieBreakUnique emits a pair only when exactly one candidate exists
	TieBreakUnique TieBreakPolicy = "unique"
)

// IsValid reports whether the policy is supported
func (p TieBreakPolicy) IsValid() bool {
	switch p {
	case TieBreakAll, TieBreakFirst, TieBreakUnique:
		return true
	}
	return false
}

// MatchRequest represents a request for a catalog/listing match run
type MatchRequest struct {
	// Input parameters
	ProductsPath string `json:"products_path"`
	ListingsPath string `json:"listings_path"`

	// S-curve tuning: desired Jaccard similarity and the collision
	// probability the banding should achieve at that similarity
	SimThreshold       float64 `json:"sim_threshold"`
	ProbAtThreshold    float64 `json:"prob_at_threshold"`
	MaxSignatureLength int     `json:"max_signature_length"`

	// Hash family seed; fixed for reproducible runs
	Seed int64 `json:"seed"`

	// Candidate handling
	TieBreak TieBreakPolicy `json:"tie_break"`

	// Performance
	MaxWorkers int `json:"max_workers"`

	// Output configuration
	OutputFormat  OutputFormat `json:"output_format"`
	OutputWriter  io.Writer    `json:"-"`
	OutputPath    string       `json:"output_path,omitempty"`
	SortBy        SortCriteria `json:"sort_by"`
	ShowDetails   bool         `json:"show_details"`
	SkipUnmatched bool         `json:"skip_unmatched"`

	// Configuration file
	ConfigPath string `json:"config_path,omitempty"`
}

// Validate validates a match request
func (req *MatchRequest) Validate() error {
	if req.ProductsPath == "" {
		return NewValidationError("products path cannot be empty")
	}

	if req.ListingsPath == "" {
		return NewValidationError("listings path cannot be empty")
	}

	if req.SimThreshold <= 0.0 || req.SimThreshold >= 1.0 {
		return NewInvalidParameterError("sim_threshold must be in (0, 1)")
	}

	if req.ProbAtThreshold <= 0.0 || req.ProbAtThreshold >= 1.0 {
		return NewInvalidParameterError("prob_at_threshold must be in (0, 1)")
	}

	if req.MaxSignatureLength < 1 {
		return NewInvalidParameterError("max_signature_length must be >= 1")
	}

	if req.MaxWorkers < 0 {
		return NewValidationError("max_workers must be >= 0")
	}

	if !req.TieBreak.IsValid() {
		return NewValidationError(fmt.Sprintf("unknown tie_break policy %q", req.TieBreak))
	}

	if !req.OutputFormat.IsValid() {
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}

	return nil
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *MatchRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil || req.OutputPath != ""
}

// MatchResponse represents the result of a match run
type MatchResponse struct {
	// Results
	Results    []*ProductMatches `json:"results" yaml:"results"`
	Pairs      []MatchPair       `json:"pairs" yaml:"pairs"`
	Band       BandParameters    `json:"band_parameters" yaml:"band_parameters"`
	Statistics *MatchStatistics  `json:"statistics" yaml:"statistics"`

	// Metadata
	Duration int64  `json:"duration_ms" yaml:"duration_ms"`
	Success  bool   `json:"success" yaml:"success"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// MatchService defines the interface for catalog/listing matching
type MatchService interface {
	// Match runs the full pipeline: read records, build the index,
	// match every listing
	Match(ctx context.Context, req *MatchRequest) (*MatchResponse, error)

	// MatchRecords matches already-loaded records
	MatchRecords(ctx context.Context, products []ProductRecord, listings []ListingRecord, req *MatchRequest) (*MatchResponse, error)
}

// RecordReader defines the interface for loading catalog and listing records
type RecordReader interface {
	// ReadProducts reads catalog records from the files matching pattern
	ReadProducts(pattern string) ([]ProductRecord, error)

	// ReadListings reads listing records from the files matching pattern
	ReadListings(pattern string) ([]ListingRecord, error)
}

// MatchOutputFormatter defines the interface for formatting match results
type MatchOutputFormatter interface {
	// FormatMatchResponse formats a match response according to the specified format
	FormatMatchResponse(response *MatchResponse, req *MatchRequest, writer io.Writer) error
}

// MatchConfigurationLoader defines the interface for loading match configuration
type MatchConfigurationLoader interface {
	// LoadMatchConfig loads match configuration from file
	LoadMatchConfig(configPath string) (*MatchRequest, error)

	// SaveMatchConfig saves match configuration to file
	SaveMatchConfig(config *MatchRequest, configPath string) error

	// GetDefaultMatchConfig returns default match configuration
	GetDefaultMatchConfig() *MatchRequest
}
