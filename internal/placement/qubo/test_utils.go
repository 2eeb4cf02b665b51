package qubo

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
)

// testScenario is the hand-checked three-candidate scenario used across the
// builder tests. With unit weights and one station to place, the expected
// matrix is
//
//	diag:     (-1, 199, 49)
//	off-diag: (0,1) = -99, (0,2) = -24, (1,2) = -24
func testScenario() *placement.Scenario {
	return &placement.Scenario{
		POIs: []placement.Site{{X: 0, Y: 0}},
		Candidates: []placement.Site{
			{X: 0, Y: 0},
			{X: 10, Y: 10},
			{X: 5, Y: 5},
		},
		NewStations: 1,
	}
}

// unitWeights sets every objective weight to one.
func unitWeights() placement.Weights {
	return placement.Weights{
		POIAttraction:    1,
		StationRepulsion: 1,
		CandidateSpread:  1,
		CountPenalty:     1,
	}
}

// newTestRand returns a deterministic source for reproducible scenarios.
func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// randomScenario draws a scenario with the given site counts, coordinates
// uniform in [0, 20).
func randomScenario(rng *rand.Rand, numCandidates, numPOIs, numExisting, newStations int) *placement.Scenario {
	randomSites := func(n int) []placement.Site {
		sites := make([]placement.Site, n)
		for i := range sites {
			sites[i] = placement.Site{
				X: rng.Float64() * 20,
				Y: rng.Float64() * 20,
			}
		}
		return sites
	}
	return &placement.Scenario{
		POIs:        randomSites(numPOIs),
		Existing:    randomSites(numExisting),
		Candidates:  randomSites(numCandidates),
		NewStations: newStations,
	}
}

// assertSymDimsEqual checks that two symmetric matrices have the same order.
func assertSymDimsEqual(t *testing.T, got, want mat.Symmetric) {
	t.Helper()

	if got.SymmetricDim() != want.SymmetricDim() {
		t.Fatalf("matrix order mismatch: got %d, want %d",
			got.SymmetricDim(), want.SymmetricDim())
	}
}

// assertSymEqual checks that two symmetric matrices are approximately equal.
func assertSymEqual(t *testing.T, got, want mat.Symmetric, tol float64) {
	t.Helper()

	assertSymDimsEqual(t, got, want)

	n := got.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			g := got.At(i, j)
			w := want.At(i, j)
			if math.Abs(g-w) > tol {
				t.Fatalf("at (%d,%d): got %v, want %v (tolerance %v)", i, j, g, w, tol)
			}
		}
	}
}
