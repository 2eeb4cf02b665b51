package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
	"github.com/chargeplan/chargeplan/internal/placement/qubo"
	"github.com/chargeplan/chargeplan/internal/solver"
)

// fakeSolver answers Solve calls from a canned function.
type fakeSolver struct {
	solve func(ctx context.Context, q *mat.SymDense) (*solver.Result, error)
	calls int
}

func (f *fakeSolver) Solve(ctx context.Context, q *mat.SymDense) (*solver.Result, error) {
	f.calls++
	return f.solve(ctx, q)
}

func pipelineScenario() *placement.Scenario {
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

func pipelineWeights() placement.Weights {
	return placement.Weights{
		POIAttraction:    1,
		StationRepulsion: 1,
		CandidateSpread:  1,
		CountPenalty:     1,
	}
}

func TestRun(t *testing.T) {
	fake := &fakeSolver{
		solve: func(ctx context.Context, q *mat.SymDense) (*solver.Result, error) {
			// One entry per candidate, the exact-count answer.
			require.Equal(t, 3, q.SymmetricDim())
			return &solver.Result{
				Selection: []int{1, 0, 0},
				Energy:    -1,
				Runtime:   2 * time.Second,
			}, nil
		},
	}

	b := qubo.NewBuilder(pipelineWeights(), nil)
	r := NewRunner(b, fake, qubo.StrategyVerify, nil)

	out, err := r.Run(context.Background(), pipelineScenario())
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 3, out.Dimension)
	assert.Equal(t, qubo.StrategyVerify, out.Strategy)
	assert.Greater(t, out.BuildTime, time.Duration(0))
	assert.Equal(t, -1.0, out.Energy)
	assert.Equal(t, 2*time.Second, out.Runtime)

	require.NotNil(t, out.Placement)
	assert.Equal(t, []int{0}, out.Placement.Indices)
	assert.Equal(t, []placement.Site{{X: 0, Y: 0}}, out.Placement.Sites)
	assert.Nil(t, out.Placement.Violation)
}

func TestRunCarriesViolation(t *testing.T) {
	fake := &fakeSolver{
		solve: func(ctx context.Context, q *mat.SymDense) (*solver.Result, error) {
			return &solver.Result{Selection: []int{1, 1, 0}, Energy: 4}, nil
		},
	}

	b := qubo.NewBuilder(pipelineWeights(), nil)
	r := NewRunner(b, fake, qubo.StrategyIterative, nil)

	out, err := r.Run(context.Background(), pipelineScenario())
	require.NoError(t, err, "an off-count selection is an outcome, not a failure")

	require.NotNil(t, out.Placement.Violation)
	assert.Equal(t, 1, out.Placement.Violation.Want)
	assert.Equal(t, 2, out.Placement.Violation.Got)
	assert.Len(t, out.Placement.Sites, 2)
}

func TestRunBuilderFailure(t *testing.T) {
	fake := &fakeSolver{
		solve: func(ctx context.Context, q *mat.SymDense) (*solver.Result, error) {
			t.Fatal("the solver must not be called when the build fails")
			return nil, nil
		},
	}

	b := qubo.NewBuilder(pipelineWeights(), nil)
	r := NewRunner(b, fake, qubo.StrategyVerify, nil)

	_, err := r.Run(context.Background(), &placement.Scenario{NewStations: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, placement.ErrInvalidScenario)
	assert.Equal(t, 0, fake.calls)
}

func TestRunSolverFailure(t *testing.T) {
	fake := &fakeSolver{
		solve: func(ctx context.Context, q *mat.SymDense) (*solver.Result, error) {
			return nil, solver.ErrUnavailable
		},
	}

	b := qubo.NewBuilder(pipelineWeights(), nil)
	r := NewRunner(b, fake, qubo.StrategyVerify, nil)

	_, err := r.Run(context.Background(), pipelineScenario())
	require.Error(t, err)
	assert.True(t, errors.Is(err, solver.ErrUnavailable),
		"solver sentinels must survive the pipeline wrapping")
}

func TestRunMapperFailure(t *testing.T) {
	fake := &fakeSolver{
		solve: func(ctx context.Context, q *mat.SymDense) (*solver.Result, error) {
			// Wrong length for the three candidates.
			return &solver.Result{Selection: []int{1, 0}}, nil
		},
	}

	b := qubo.NewBuilder(pipelineWeights(), nil)
	r := NewRunner(b, fake, qubo.StrategyVerify, nil)

	_, err := r.Run(context.Background(), pipelineScenario())
	require.Error(t, err)
	assert.ErrorIs(t, err, placement.ErrInvalidSelection)
}
