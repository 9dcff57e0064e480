package domain

import "os"

// Default S-curve tuning. The similarity/probability pair reproduces the
// historical defaults of the matcher: a listing whose token set has
// Jaccard similarity 0.975 with a product is found with probability 0.99.
const (
	DefaultSimThreshold       = 0.975
	DefaultProbAtThreshold    = 0.99
	DefaultMaxSignatureLength = 512
	DefaultSeed               = int64(1)
)

// DefaultMatchRequest returns a match request populated with defaults.
// Paths are left empty; callers fill them from CLI arguments or config.
func DefaultMatchRequest() *MatchRequest {
	return &MatchRequest{
		SimThreshold:       DefaultSimThreshold,
		ProbAtThreshold:    DefaultProbAtThreshold,
		MaxSignatureLength: DefaultMaxSignatureLength,
		Seed:               DefaultSeed,
		TieBreak:           TieBreakAll,
		MaxWorkers:         0, // 0 = one worker per CPU
		OutputFormat:       OutputFormatText,
		OutputWriter:       os.Stdout,
		SortBy:             SortByProduct,
		ShowDetails:        false,
		SkipUnmatched:      false,
	}
}
