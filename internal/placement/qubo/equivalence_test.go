package qubo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
)

func TestStrategiesAgree(t *testing.T) {
	// The two constructions must agree cell for cell across a spread of
	// scenario shapes, including degenerate site sets.
	tests := []struct {
		name        string
		seed        int64
		candidates  int
		pois        int
		existing    int
		newStations int
	}{
		{"small", 1, 3, 1, 1, 1},
		{"mid", 2, 12, 4, 3, 3},
		{"large", 3, 40, 8, 6, 5},
		{"no existing stations", 4, 10, 3, 0, 2},
		{"single candidate", 5, 1, 2, 2, 1},
		{"select all", 6, 6, 2, 2, 6},
		{"select none", 7, 6, 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := randomScenario(newTestRand(tt.seed), tt.candidates, tt.pois, tt.existing, tt.newStations)
			b := NewBuilder(placement.DefaultWeights(tt.candidates), nil)

			it, err := b.BuildIterative(s)
			require.NoError(t, err)
			vec, err := b.BuildVectorized(s)
			require.NoError(t, err)

			assert.NoError(t, VerifyEquivalence(it, vec))
		})
	}
}

func TestStrategiesAgreeWithCoincidentSites(t *testing.T) {
	// Coincident candidates stress the Gram expansion, which can go slightly
	// negative where the exact distance is zero.
	s := &placement.Scenario{
		POIs:     []placement.Site{{X: 3, Y: 3}, {X: 3, Y: 3}},
		Existing: []placement.Site{{X: 1, Y: 4}},
		Candidates: []placement.Site{
			{X: 3, Y: 3},
			{X: 3, Y: 3},
			{X: 9, Y: 0},
		},
		NewStations: 2,
	}
	b := NewBuilder(placement.DefaultWeights(3), nil)

	it, err := b.BuildIterative(s)
	require.NoError(t, err)
	vec, err := b.BuildVectorized(s)
	require.NoError(t, err)

	assert.NoError(t, VerifyEquivalence(it, vec))
	assertSymEqual(t, vec, it, 1e-9)
}

func TestVerifyEquivalence(t *testing.T) {
	base := mat.NewSymDense(2, []float64{1, -2, -2, 3})

	t.Run("identical matrices pass", func(t *testing.T) {
		other := mat.NewSymDense(2, []float64{1, -2, -2, 3})
		assert.NoError(t, VerifyEquivalence(base, other))
	})

	t.Run("within relative tolerance passes", func(t *testing.T) {
		other := mat.NewSymDense(2, []float64{1 + 1e-12, -2, -2, 3})
		assert.NoError(t, VerifyEquivalence(base, other))
	})

	t.Run("nil matrix", func(t *testing.T) {
		err := VerifyEquivalence(nil, base)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "matrix is nil")
	})

	t.Run("order mismatch", func(t *testing.T) {
		other := mat.NewSymDense(3, nil)
		err := VerifyEquivalence(base, other)
		require.Error(t, err)
		assert.ErrorIs(t, err, placement.ErrDimensionMismatch)
		assert.Contains(t, err.Error(), "2x2 vs 3x3")
	})

	t.Run("divergent cell is named", func(t *testing.T) {
		other := mat.NewSymDense(2, []float64{1, -2, -2, 3.5})
		err := VerifyEquivalence(base, other)
		require.Error(t, err)
		assert.ErrorIs(t, err, placement.ErrStrategyDivergence)
		assert.Contains(t, err.Error(), "cell (1,1)")
	})

	t.Run("worst cell is named", func(t *testing.T) {
		other := mat.NewSymDense(2, []float64{1.001, -2.5, -2.5, 3})
		err := VerifyEquivalence(base, other)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cell (0,1)")
	})
}
