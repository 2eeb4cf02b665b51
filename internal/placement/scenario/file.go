package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chargeplan/chargeplan/internal/placement"
)

// Load reads a fixed scenario from a YAML file. When the file lists no
// candidates but carries grid dimensions, the candidate set is derived the
// way Generate builds it: every grid node without an existing station.
func Load(path string) (*placement.Scenario, error) {
	const op = "Load"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, placement.WrapError(err, "scenario: "+op)
	}

	var s placement.Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, placement.WrapErrorf(err, "scenario: %s: parsing %s", op, path)
	}

	if len(s.Candidates) == 0 && s.Width > 0 && s.Height > 0 {
		deriveCandidates(&s)
	}
	if len(s.Candidates) == 0 {
		err := fmt.Errorf("%w: %s lists no candidate sites and no grid to derive them from",
			placement.ErrInvalidScenario, path)
		return nil, placement.WrapError(err, "scenario: "+op)
	}

	return &s, nil
}

// deriveCandidates fills s.Candidates with every grid node that has no
// existing station on it.
func deriveCandidates(s *placement.Scenario) {
	occupied := make(map[placement.Site]bool, len(s.Existing))
	for _, site := range s.Existing {
		occupied[site] = true
	}
	for _, node := range gridNodes(s.Width, s.Height) {
		if !occupied[node] {
			s.Candidates = append(s.Candidates, node)
		}
	}
}
