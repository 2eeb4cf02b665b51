// Package scenario creates and loads placement scenarios.
package scenario

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/chargeplan/chargeplan/internal/placement"
)

// GridConfig describes a randomly generated grid scenario.
type GridConfig struct {
	// Width and Height are the grid dimensions.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// POICount is the number of grid nodes drawn as points of interest.
	POICount int `json:"poi_count" yaml:"poi_count"`

	// ExistingCount is the number of grid nodes drawn as existing stations.
	ExistingCount int `json:"existing_count" yaml:"existing_count"`

	// NewStations is the number of new stations to place.
	NewStations int `json:"new_stations" yaml:"new_stations"`
}

// Validate checks that the grid can hold the scenario.
func (cfg GridConfig) Validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions %dx%d must be positive",
			placement.ErrInvalidScenario, cfg.Width, cfg.Height)
	}
	if cfg.POICount < 0 || cfg.ExistingCount < 0 || cfg.NewStations < 0 {
		return fmt.Errorf("%w: site counts must be non-negative", placement.ErrInvalidScenario)
	}
	nodes := cfg.Width * cfg.Height
	if cfg.POICount > nodes || cfg.ExistingCount+cfg.NewStations > nodes {
		return fmt.Errorf("%w: grid size is not large enough for scenario",
			placement.ErrInvalidScenario)
	}
	return nil
}

// Generate builds a scenario on a Width x Height grid. POICount distinct
// nodes become POIs and ExistingCount distinct nodes become existing
// stations; the two draws are independent, so a POI may share a node with a
// station. Every node without an existing station is a candidate. A nil rng
// is seeded from the clock.
func Generate(cfg GridConfig, rng *rand.Rand) (*placement.Scenario, error) {
	const op = "Generate"

	if err := cfg.Validate(); err != nil {
		return nil, placement.WrapError(err, "scenario: "+op)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	nodes := gridNodes(cfg.Width, cfg.Height)

	pois := sampleSites(rng, nodes, cfg.POICount)
	existing := sampleSites(rng, nodes, cfg.ExistingCount)

	occupied := make(map[placement.Site]bool, len(existing))
	for _, s := range existing {
		occupied[s] = true
	}
	candidates := make([]placement.Site, 0, len(nodes)-len(existing))
	for _, s := range nodes {
		if !occupied[s] {
			candidates = append(candidates, s)
		}
	}

	return &placement.Scenario{
		Width:       cfg.Width,
		Height:      cfg.Height,
		POIs:        pois,
		Existing:    existing,
		Candidates:  candidates,
		NewStations: cfg.NewStations,
	}, nil
}

// gridNodes enumerates the grid in column-major order, X before Y.
func gridNodes(w, h int) []placement.Site {
	nodes := make([]placement.Site, 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			nodes = append(nodes, placement.Site{X: float64(x), Y: float64(y)})
		}
	}
	return nodes
}

// sampleSites draws k distinct sites without replacement.
func sampleSites(rng *rand.Rand, nodes []placement.Site, k int) []placement.Site {
	idx := rng.Perm(len(nodes))[:k]
	out := make([]placement.Site, k)
	for i, j := range idx {
		out[i] = nodes[j]
	}
	return out
}
