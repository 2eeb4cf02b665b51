package placement

import (
	"fmt"
	"strings"
	"time"
)

// Report collects the distance diagnostics quoted for a completed placement.
// All distances are Manhattan distances.
type Report struct {
	Placement *Placement `json:"placement"`

	// MeanPOIDistance[i] is the mean distance from the i-th new site to the
	// POIs. Empty when the scenario has no POIs.
	MeanPOIDistance []float64 `json:"mean_poi_distance,omitempty"`

	// MeanExistingDistance[i] is the mean distance from the i-th new site to
	// the existing stations. Empty when there are none.
	MeanExistingDistance []float64 `json:"mean_existing_distance,omitempty"`

	// TotalNewPairDistance sums the distances over all pairs of new sites.
	// Zero when fewer than two sites were placed.
	TotalNewPairDistance float64 `json:"total_new_pair_distance"`

	// Energy and Runtime echo the solver diagnostics.
	Energy  float64       `json:"energy"`
	Runtime time.Duration `json:"runtime"`
}

// NewReport computes the distance diagnostics for a placement on its scenario.
func NewReport(s *Scenario, p *Placement, energy float64, runtime time.Duration) *Report {
	r := &Report{
		Placement: p,
		Energy:    energy,
		Runtime:   runtime,
	}

	if len(s.POIs) > 0 {
		r.MeanPOIDistance = meanDistances(p.Sites, s.POIs)
	}
	if len(s.Existing) > 0 {
		r.MeanExistingDistance = meanDistances(p.Sites, s.Existing)
	}
	for i := 0; i < len(p.Sites); i++ {
		for j := i + 1; j < len(p.Sites); j++ {
			r.TotalNewPairDistance += ManhattanDistance(p.Sites[i], p.Sites[j])
		}
	}

	return r
}

// meanDistances returns, for each site in from, its mean distance to the
// sites in to. to must be non-empty.
func meanDistances(from, to []Site) []float64 {
	out := make([]float64, len(from))
	for i, a := range from {
		var sum float64
		for _, b := range to {
			sum += ManhattanDistance(a, b)
		}
		out[i] = sum / float64(len(to))
	}
	return out
}

// String renders the report as the command-line solution block.
func (r *Report) String() string {
	var b strings.Builder

	b.WriteString("Solution returned:\n")
	b.WriteString("------------------\n")

	sites := make([]string, len(r.Placement.Sites))
	for i, s := range r.Placement.Sites {
		sites[i] = s.String()
	}
	fmt.Fprintf(&b, "New charging locations:\t\t\t%s\n", strings.Join(sites, " "))

	if len(r.MeanPOIDistance) > 0 {
		fmt.Fprintf(&b, "Average distance to POIs:\t\t%s\n", formatFloats(r.MeanPOIDistance))
	}
	if len(r.MeanExistingDistance) > 0 {
		fmt.Fprintf(&b, "Average distance to old stations:\t%s\n", formatFloats(r.MeanExistingDistance))
	}
	if len(r.Placement.Sites) > 1 {
		fmt.Fprintf(&b, "Distance between new chargers:\t\t%g\n", r.TotalNewPairDistance)
	}

	fmt.Fprintf(&b, "Energy:\t\t\t\t\t%g\n", r.Energy)
	fmt.Fprintf(&b, "Solver time:\t\t\t\t%s\n", r.Runtime)

	if v := r.Placement.Violation; v != nil {
		fmt.Fprintf(&b, "Constraint violation:\t\t\t%s\n", v)
	}

	return b.String()
}

func formatFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RenderGrid draws the scenario and placement as an ASCII map, one row per
// grid line with the highest Y first. Legend: '.' empty node, 'P' point of
// interest, 'E' existing station, 'N' new station. Overlapping markers keep
// the later legend entry. Returns "" when the scenario has no grid bounds.
func RenderGrid(s *Scenario, p *Placement) string {
	if s == nil || s.Width <= 0 || s.Height <= 0 {
		return ""
	}

	grid := make([][]byte, s.Height)
	for y := range grid {
		row := make([]byte, s.Width)
		for x := range row {
			row[x] = '.'
		}
		grid[y] = row
	}

	mark := func(sites []Site, c byte) {
		for _, site := range sites {
			x, y := int(site.X), int(site.Y)
			if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
				continue
			}
			grid[y][x] = c
		}
	}
	mark(s.POIs, 'P')
	mark(s.Existing, 'E')
	if p != nil {
		mark(p.Sites, 'N')
	}

	var b strings.Builder
	for y := s.Height - 1; y >= 0; y-- {
		b.Write(grid[y])
		b.WriteByte('\n')
	}
	return b.String()
}
