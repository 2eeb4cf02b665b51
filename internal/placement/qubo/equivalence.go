package qubo

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
)

// Tolerances for cross-strategy equivalence. Cells must match within a 1e-9
// relative tolerance, with a 1e-12 absolute floor for near-zero entries.
const (
	EquivalenceRelTol = 1e-9
	EquivalenceAbsTol = 1e-12
)

// VerifyEquivalence checks that two constructions of the same scenario agree.
// A shape mismatch reports ErrDimensionMismatch; any cell outside tolerance
// reports ErrStrategyDivergence naming the worst offender.
func VerifyEquivalence(a, b *mat.SymDense) error {
	const op = "VerifyEquivalence"

	if a == nil || b == nil {
		err := errors.New("matrix is nil")
		return placement.WrapError(err, "qubo: "+op)
	}

	na, nb := a.SymmetricDim(), b.SymmetricDim()
	if na != nb {
		err := fmt.Errorf("%w: %dx%d vs %dx%d", placement.ErrDimensionMismatch, na, na, nb, nb)
		return placement.WrapError(err, "qubo: "+op)
	}

	worstI, worstJ := -1, -1
	var worstDiff float64
	for i := 0; i < na; i++ {
		for j := i; j < na; j++ {
			x, y := a.At(i, j), b.At(i, j)
			if scalar.EqualWithinAbsOrRel(x, y, EquivalenceAbsTol, EquivalenceRelTol) {
				continue
			}
			if d := math.Abs(x - y); d > worstDiff {
				worstDiff = d
				worstI, worstJ = i, j
			}
		}
	}

	if worstI >= 0 {
		err := fmt.Errorf("%w: cell (%d,%d) differs by %g (%g vs %g)",
			placement.ErrStrategyDivergence, worstI, worstJ, worstDiff,
			a.At(worstI, worstJ), b.At(worstI, worstJ))
		return placement.WrapError(err, "qubo: "+op)
	}

	return nil
}
