package matcher

import (
	"fmt"
	"math"

	"github.com/reclink-dev/reclink/domain"
)

// BandConfig describes how signatures are partitioned for banded LSH.
// SignatureLength = Bands * Rows always holds.
type BandConfig struct {
	SignatureLength int
	Bands           int
	Rows            int

	// Probability is the S-curve value 1-(1-s^r)^b at the similarity
	// threshold the configuration was solved for
	Probability float64
}

// SolverOptions tunes the band-parameter search. The search space and
// acceptance bound are deliberately exposed rather than hard-coded: they
// are the knobs that trade false positives against false negatives.
type SolverOptions struct {
	// MaxRows caps rows per band; deeper bands than this stop being
	// useful because s^r vanishes
	MaxRows int

	// Tolerance is the largest acceptable |achieved - requested|
	// probability miss. A best candidate outside it is Unsatisfiable
	// and the caller should widen the signature length budget.
	Tolerance float64
}

// DefaultSolverOptions returns the default search bounds
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxRows:   64,
		Tolerance: 0.05,
	}
}

// CollisionProbability evaluates the banding S-curve
// P(collision) = 1 - (1 - s^rows)^bands at similarity s
func CollisionProbability(s float64, bands, rows int) float64 {
	return 1.0 - math.Pow(1.0-math.Pow(s, float64(rows)), float64(bands))
}

// SolveBandConfig searches all (bands, rows) pairs with
// bands*rows <= maxSignatureLength for the configuration whose S-curve
// value at simThreshold lies closest to probAtThreshold. Ties prefer the
// shorter signature (cheaper to compute), then fewer rows.
func SolveBandConfig(simThreshold, probAtThreshold float64, maxSignatureLength int, opts SolverOptions) (BandConfig, error) {
	if simThreshold <= 0.0 || simThreshold >= 1.0 {
		return BandConfig{}, domain.NewInvalidParameterError(
			fmt.Sprintf("similarity threshold %v outside (0, 1)", simThreshold))
	}
	if probAtThreshold <= 0.0 || probAtThreshold >= 1.0 {
		return BandConfig{}, domain.NewInvalidParameterError(
			fmt.Sprintf("probability at threshold %v outside (0, 1)", probAtThreshold))
	}
	if maxSignatureLength < 1 {
		return BandConfig{}, domain.NewInvalidParameterError("max signature length must be >= 1")
	}
	if opts.MaxRows < 1 {
		opts.MaxRows = DefaultSolverOptions().MaxRows
	}
	if opts.Tolerance <= 0.0 {
		opts.Tolerance = DefaultSolverOptions().Tolerance
	}

	var best BandConfig
	bestDiff := math.Inf(1)

	maxRows := opts.MaxRows
	if maxRows > maxSignatureLength {
		maxRows = maxSignatureLength
	}

	for rows := 1; rows <= maxRows; rows++ {
		for bands := 1; bands*rows <= maxSignatureLength; bands++ {
			p := CollisionProbability(simThreshold, bands, rows)
			diff := math.Abs(p - probAtThreshold)

			length := bands * rows
			better := diff < bestDiff ||
				(diff == bestDiff && length < best.SignatureLength) ||
				(diff == bestDiff && length == best.SignatureLength && rows < best.Rows)
			if better {
				bestDiff = diff
				best = BandConfig{
					SignatureLength: length,
					Bands:           bands,
					Rows:            rows,
					Probability:     p,
				}
			}
		}
	}

	if bestDiff > opts.Tolerance {
		return BandConfig{}, domain.NewUnsatisfiableError(fmt.Sprintf(
			"no band configuration within %d rows reaches probability %.4f at similarity %.4f (best miss %.4f); widen the signature length budget",
			maxSignatureLength, probAtThreshold, simThreshold, bestDiff))
	}

	return best, nil
}
