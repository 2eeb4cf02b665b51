package qubo

import (
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
)

// BuildVectorized assembles the QUBO from whole-matrix operations: pairwise
// squared distances come from Gram products rather than per-pair arithmetic,
// and the distance terms reduce to row means over those matrices. It must
// agree with BuildIterative within the equivalence tolerance.
func (b *Builder) BuildVectorized(s *placement.Scenario) (*mat.SymDense, error) {
	const op = "Builder.BuildVectorized"

	if err := b.Validate(s); err != nil {
		return nil, placement.WrapError(err, "qubo: "+op)
	}

	n := len(s.Candidates)
	w := b.weights
	start := time.Now()

	cands := b.pool.GetDense(n, 2)
	defer b.pool.PutDense(cands)
	fillSites(cands, s.Candidates)

	// Accumulate the three diagonal contributions as vectors.
	diag := make([]float64, n)

	if w.POIAttraction > 0 && len(s.POIs) > 0 {
		pois := b.pool.GetDense(len(s.POIs), 2)
		fillSites(pois, s.POIs)
		d2 := b.pairwiseSquared(cands, pois)
		floats.AddScaled(diag, w.POIAttraction, rowMeans(d2))
		b.pool.PutDense(d2)
		b.pool.PutDense(pois)
	}

	if w.StationRepulsion > 0 && len(s.Existing) > 0 {
		stations := b.pool.GetDense(len(s.Existing), 2)
		fillSites(stations, s.Existing)
		d2 := b.pairwiseSquared(cands, stations)
		floats.AddScaled(diag, -w.StationRepulsion, rowMeans(d2))
		b.pool.PutDense(d2)
		b.pool.PutDense(stations)
	}

	if w.CountPenalty > 0 {
		k := float64(s.NewStations)
		floats.AddConst(w.CountPenalty*(1-2*k), diag)
	}

	// Build the off-diagonal plane in dense form, then fold everything into
	// the symmetric result.
	full := b.pool.GetDense(n, n)
	defer b.pool.PutDense(full)
	full.Zero()

	if w.CandidateSpread > 0 {
		pairD2 := b.pairwiseSquared(cands, cands)
		full.Scale(-w.CandidateSpread/2, pairD2)
		b.pool.PutDense(pairD2)
	}
	if w.CountPenalty > 0 {
		full.Apply(func(i, j int, v float64) float64 {
			if i == j {
				return v
			}
			return v + w.CountPenalty
		}, full)
	}

	q := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		q.SetSym(i, i, diag[i])
		for j := i + 1; j < n; j++ {
			q.SetSym(i, j, full.At(i, j))
		}
	}

	b.logger.Debug("Assembled QUBO vectorized",
		zap.Int("candidates", n),
		zap.Int("new_stations", s.NewStations),
		zap.Duration("elapsed", time.Since(start)),
	)

	return q, nil
}

// pairwiseSquared returns the r x c matrix of squared Euclidean distances
// between the rows of a and the rows of c, expanded from Gram products as
// ||a_i||^2 + ||c_j||^2 - 2*a_i.c_j.
func (b *Builder) pairwiseSquared(a, c *mat.Dense) *mat.Dense {
	ra, _ := a.Dims()
	rc, _ := c.Dims()

	aNorm := make([]float64, ra)
	for i := 0; i < ra; i++ {
		row := a.RawRowView(i)
		aNorm[i] = floats.Dot(row, row)
	}
	cNorm := make([]float64, rc)
	for j := 0; j < rc; j++ {
		row := c.RawRowView(j)
		cNorm[j] = floats.Dot(row, row)
	}

	d2 := b.pool.GetDense(ra, rc)
	d2.Mul(a, c.T())
	d2.Apply(func(i, j int, v float64) float64 {
		s := aNorm[i] + cNorm[j] - 2*v
		// Cancellation can leave a tiny negative for coincident rows.
		if s < 0 {
			s = 0
		}
		return s
	}, d2)

	return d2
}

// rowMeans reduces each row of m to its mean.
func rowMeans(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = floats.Sum(m.RawRowView(i)) / float64(c)
	}
	return out
}

// fillSites writes sites into the rows of an len(sites) x 2 matrix.
func fillSites(m *mat.Dense, sites []placement.Site) {
	for i, s := range sites {
		m.Set(i, 0, s.X)
		m.Set(i, 1, s.Y)
	}
}
