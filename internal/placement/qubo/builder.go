// Package qubo assembles QUBO matrices for charging-station placement.
//
// The matrix Q is symmetric with one binary variable per candidate site.
// Diagonal entries carry the per-candidate bias. Each unordered pair's total
// bias b is stored half-split, b/2 in both symmetric cells, so the energy
// x^T Q x counts b exactly once per selected pair.
package qubo

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
)

// Strategy selects how the matrix is assembled.
type Strategy string

const (
	// StrategyIterative assembles the matrix entry by entry with explicit
	// loops over candidates, POIs and stations.
	StrategyIterative Strategy = "iterative"
	// StrategyVectorized assembles the matrix from whole-matrix operations.
	StrategyVectorized Strategy = "vectorized"
	// StrategyVerify builds with both strategies, checks that they agree,
	// and returns the iterative result.
	StrategyVerify Strategy = "verify"
)

// ParseStrategy returns the Strategy named by s. The empty string selects
// StrategyVerify.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(s)); st {
	case StrategyIterative, StrategyVectorized, StrategyVerify:
		return st, nil
	case "":
		return StrategyVerify, nil
	default:
		return "", placement.NewErrorf("unknown build strategy %q", s)
	}
}

// Builder assembles placement QUBO matrices for a fixed set of weights.
// A Builder is not safe for concurrent use; its scratch pool is unguarded.
type Builder struct {
	weights placement.Weights
	pool    *Pool
	logger  *zap.Logger
}

// NewBuilder creates a builder for the given weights. A nil logger disables
// logging.
func NewBuilder(w placement.Weights, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		weights: w,
		pool:    NewPool(),
		logger:  logger.Named("qubo_builder"),
	}
}

// Weights returns the weights the builder encodes.
func (b *Builder) Weights() placement.Weights {
	return b.weights
}

// Build assembles the QUBO for the scenario using the given strategy.
func (b *Builder) Build(s *placement.Scenario, strategy Strategy) (*mat.SymDense, error) {
	const op = "Builder.Build"

	switch strategy {
	case StrategyIterative:
		return b.BuildIterative(s)
	case StrategyVectorized:
		return b.BuildVectorized(s)
	case StrategyVerify, "":
		it, err := b.BuildIterative(s)
		if err != nil {
			return nil, err
		}
		vec, err := b.BuildVectorized(s)
		if err != nil {
			return nil, err
		}
		if err := VerifyEquivalence(it, vec); err != nil {
			return nil, err
		}
		return it, nil
	default:
		err := fmt.Errorf("unknown build strategy %q", strategy)
		return nil, placement.WrapError(err, "qubo: "+op)
	}
}

// Validate checks that the scenario and weights admit a well-defined QUBO.
// Both build paths call it, so callers only need it when they want to reject
// bad input before committing to a build.
func (b *Builder) Validate(s *placement.Scenario) error {
	if s == nil {
		return fmt.Errorf("%w: scenario is nil", placement.ErrInvalidScenario)
	}
	n := len(s.Candidates)
	if n == 0 {
		return fmt.Errorf("%w: scenario has no candidate sites", placement.ErrInvalidScenario)
	}
	if s.NewStations < 0 || s.NewStations > n {
		return fmt.Errorf("%w: new station count %d outside [0, %d]",
			placement.ErrInvalidScenario, s.NewStations, n)
	}

	w := b.weights
	weights := []struct {
		name  string
		value float64
	}{
		{"poi_attraction", w.POIAttraction},
		{"station_repulsion", w.StationRepulsion},
		{"candidate_spread", w.CandidateSpread},
		{"count_penalty", w.CountPenalty},
	}
	for _, g := range weights {
		if g.value < 0 {
			return fmt.Errorf("%w: negative weight %s = %g",
				placement.ErrInvalidScenario, g.name, g.value)
		}
	}

	// The POI term is a mean over POIs, undefined on an empty set. With a
	// zero weight the term is skipped and no POIs are needed.
	if len(s.POIs) == 0 && w.POIAttraction > 0 {
		return fmt.Errorf("%w: poi_attraction is %g but the scenario has no POIs",
			placement.ErrInvalidScenario, w.POIAttraction)
	}

	return nil
}

// Energy evaluates x^T Q x over the full symmetric matrix for a 0/1
// assignment. bits must have one entry per variable.
func Energy(q mat.Symmetric, bits []int) float64 {
	n := q.SymmetricDim()
	var e float64
	for i := 0; i < n; i++ {
		if bits[i] == 0 {
			continue
		}
		e += q.At(i, i)
		for j := i + 1; j < n; j++ {
			if bits[j] != 0 {
				// Off-diagonal cells hold half the pair bias and the
				// full matrix contains both, so count the cell twice.
				e += 2 * q.At(i, j)
			}
		}
	}
	return e
}
