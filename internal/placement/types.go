// Package placement defines the data model for EV charging-station placement:
// scenarios, objective weights, and solved placements.
package placement

import "fmt"

// Site is a point on the planning grid.
type Site struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// String returns the site as "(x,y)".
func (s Site) String() string {
	return fmt.Sprintf("(%g,%g)", s.X, s.Y)
}

// Scenario is a single placement problem: the points of interest new stations
// should serve, the stations already in service, the candidate sites to choose
// from, and how many of them to build.
type Scenario struct {
	// Width and Height record the grid the sites were drawn from.
	// They bound the map rendering in reports.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// POIs are the points of interest to serve.
	POIs []Site `json:"pois" yaml:"pois"`

	// Existing are the charging stations already in service.
	Existing []Site `json:"existing" yaml:"existing"`

	// Candidates are the sites available for new stations. The QUBO carries
	// one binary variable per candidate, in this order.
	Candidates []Site `json:"candidates" yaml:"candidates"`

	// NewStations is the exact number of candidates to select.
	NewStations int `json:"new_stations" yaml:"new_stations"`
}

// Weights are the term weights of the placement objective. All four must be
// non-negative; each scales one contribution to the QUBO.
type Weights struct {
	// POIAttraction (gamma1) rewards candidates close to the POIs.
	POIAttraction float64 `json:"poi_attraction" yaml:"poi_attraction"`

	// StationRepulsion (gamma2) rewards candidates far from existing stations.
	StationRepulsion float64 `json:"station_repulsion" yaml:"station_repulsion"`

	// CandidateSpread (gamma3) rewards selections whose sites are mutually
	// far apart.
	CandidateSpread float64 `json:"candidate_spread" yaml:"candidate_spread"`

	// CountPenalty (gamma4) penalizes selections that do not pick exactly
	// Scenario.NewStations sites.
	CountPenalty float64 `json:"count_penalty" yaml:"count_penalty"`
}

// DefaultWeights derives term weights from the candidate count n: 4n, n/3,
// 1.7n and n^3. The cubic count penalty dominates the distance terms, which
// grow at most quadratically with grid size.
func DefaultWeights(numCandidates int) Weights {
	n := float64(numCandidates)
	return Weights{
		POIAttraction:    4 * n,
		StationRepulsion: n / 3,
		CandidateSpread:  1.7 * n,
		CountPenalty:     n * n * n,
	}
}

// Placement is a solved selection mapped back onto candidate coordinates.
type Placement struct {
	// Indices are the selected positions in Scenario.Candidates, ascending.
	Indices []int `json:"indices"`

	// Sites are the coordinates of the selected candidates.
	Sites []Site `json:"sites"`

	// Violation is set when the selection size misses the scenario's
	// NewStations target. The placement is still usable.
	Violation *ConstraintViolation `json:"violation,omitempty"`
}

// ConstraintViolation reports a selection whose size missed the exact-count
// target. It is diagnostic, not an error: mapping proceeds and callers decide
// what to do with the result.
type ConstraintViolation struct {
	Want int `json:"want"`
	Got  int `json:"got"`
}

// String returns a one-line description of the violation.
func (v *ConstraintViolation) String() string {
	return fmt.Sprintf("selected %d sites, want exactly %d", v.Got, v.Want)
}
