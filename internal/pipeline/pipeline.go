// Package pipeline runs the end-to-end placement flow: build the QUBO for a
// scenario, solve it remotely, and map the winning configuration back onto
// candidate sites.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
	"github.com/chargeplan/chargeplan/internal/placement/qubo"
	"github.com/chargeplan/chargeplan/internal/solver"
)

// QUBOSolver is the solving boundary of the pipeline. *solver.Client
// implements it; tests substitute fakes.
type QUBOSolver interface {
	Solve(ctx context.Context, q *mat.SymDense) (*solver.Result, error)
}

// Runner wires builder, solver and mapper together for repeated runs.
type Runner struct {
	builder  *qubo.Builder
	solver   QUBOSolver
	strategy qubo.Strategy
	logger   *zap.Logger
}

// NewRunner creates a pipeline runner. A nil logger disables logging.
func NewRunner(b *qubo.Builder, s QUBOSolver, strategy qubo.Strategy, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		builder:  b,
		solver:   s,
		strategy: strategy,
		logger:   logger.Named("pipeline"),
	}
}

// Outcome is everything a single pipeline run produced.
type Outcome struct {
	// Dimension is the QUBO order, one variable per candidate.
	Dimension int `json:"dimension"`

	// Strategy is the build strategy that produced the matrix.
	Strategy qubo.Strategy `json:"strategy"`

	// BuildTime is how long matrix assembly took.
	BuildTime time.Duration `json:"build_time"`

	// Energy and Runtime are the solver's diagnostics for the winning
	// configuration.
	Energy  float64       `json:"energy"`
	Runtime time.Duration `json:"runtime"`

	// Placement is the mapped selection, including any count violation.
	Placement *placement.Placement `json:"placement"`
}

// Run executes the pipeline once for the scenario. Builder and mapper errors
// abort the run; a count violation does not, it is logged and carried in the
// outcome.
func (r *Runner) Run(ctx context.Context, s *placement.Scenario) (*Outcome, error) {
	const op = "Runner.Run"

	buildStart := time.Now()
	q, err := r.builder.Build(s, r.strategy)
	if err != nil {
		return nil, placement.WrapError(err, "pipeline: "+op)
	}
	buildTime := time.Since(buildStart)

	n := q.SymmetricDim()
	r.logger.Info("QUBO built",
		zap.Int("dimension", n),
		zap.String("strategy", string(r.strategy)),
		zap.Duration("build_time", buildTime),
	)

	res, err := r.solver.Solve(ctx, q)
	if err != nil {
		return nil, placement.WrapError(err, "pipeline: "+op)
	}

	p, err := placement.MapSelection(s, res.Selection)
	if err != nil {
		return nil, placement.WrapError(err, "pipeline: "+op)
	}
	if p.Violation != nil {
		r.logger.Warn("Placement misses exact-count target",
			zap.Int("want", p.Violation.Want),
			zap.Int("got", p.Violation.Got),
		)
	}

	r.logger.Info("Placement solved",
		zap.Int("new_sites", len(p.Sites)),
		zap.Float64("energy", res.Energy),
		zap.Duration("solver_runtime", res.Runtime),
	)

	return &Outcome{
		Dimension: n,
		Strategy:  r.strategy,
		BuildTime: buildTime,
		Energy:    res.Energy,
		Runtime:   res.Runtime,
		Placement: p,
	}, nil
}
