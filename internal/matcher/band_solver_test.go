package matcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclink-dev/reclink/domain"
)

func TestSolveBandConfig_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		s      float64
		p      float64
		maxLen int
	}{
		{"similarity zero", 0.0, 0.9, 100},
		{"similarity one", 1.0, 0.9, 100},
		{"similarity negative", -0.5, 0.9, 100},
		{"probability zero", 0.5, 0.0, 100},
		{"probability one", 0.5, 1.0, 100},
		{"probability above one", 0.5, 1.5, 100},
		{"zero length budget", 0.5, 0.9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolveBandConfig(tt.s, tt.p, tt.maxLen, DefaultSolverOptions())
			assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidParameter), "got %v", err)
		})
	}
}

func TestSolveBandConfig_HitsRequestedCurve(t *testing.T) {
	tests := []struct {
		name   string
		s      float64
		p      float64
		maxLen int
	}{
		{"tight high threshold", 0.99, 0.99, 256},
		{"midpoint", 0.5, 0.5, 256},
		{"historical defaults", 0.975, 0.99, 512},
		{"loose threshold high recall", 0.5, 0.9, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := SolveBandConfig(tt.s, tt.p, tt.maxLen, DefaultSolverOptions())
			require.NoError(t, err)

			assert.Equal(t, config.SignatureLength, config.Bands*config.Rows)
			assert.LessOrEqual(t, config.SignatureLength, tt.maxLen)

			achieved := CollisionProbability(tt.s, config.Bands, config.Rows)
			assert.InDelta(t, tt.p, achieved, 0.05)
			assert.Equal(t, achieved, config.Probability)
		})
	}
}

func TestSolveBandConfig_PrefersSmallerSignatureOnTies(t *testing.T) {
	// s == p is satisfied exactly by a single row in a single band;
	// any larger exact configuration must lose the tie
	config, err := SolveBandConfig(0.5, 0.5, 128, DefaultSolverOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, config.SignatureLength)
	assert.Equal(t, 1, config.Bands)
	assert.Equal(t, 1, config.Rows)
}

func TestSolveBandConfig_Unsatisfiable(t *testing.T) {
	// Four hash functions cannot push the collision probability for
	// similarity 0.01 anywhere near 0.99
	_, err := SolveBandConfig(0.01, 0.99, 4, DefaultSolverOptions())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsatisfiable), "got %v", err)
}

func TestSolveBandConfig_WideningBudgetRecovers(t *testing.T) {
	// The documented recovery for Unsatisfiable: retry with a larger
	// signature length budget
	_, err := SolveBandConfig(0.2, 0.99, 8, DefaultSolverOptions())
	require.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsatisfiable), "got %v", err)

	config, err := SolveBandConfig(0.2, 0.99, 2048, DefaultSolverOptions())
	require.NoError(t, err)
	assert.InDelta(t, 0.99, config.Probability, 0.05)
}

func TestCollisionProbability(t *testing.T) {
	// Single band, single row: the curve is the similarity itself
	assert.InDelta(t, 0.7, CollisionProbability(0.7, 1, 1), 1e-12)

	// Known closed-form point: b=8, r=2, s=0.5 -> 1 - 0.75^8
	expected := 1.0 - math.Pow(0.75, 8)
	assert.InDelta(t, expected, CollisionProbability(0.5, 8, 2), 1e-12)

	// Monotone in similarity
	assert.Less(t,
		CollisionProbability(0.2, 16, 4),
		CollisionProbability(0.8, 16, 4))
}
