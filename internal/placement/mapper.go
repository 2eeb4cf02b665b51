package placement

import (
	"errors"
	"fmt"
)

// MapSelection maps a solver selection vector back onto the scenario's
// candidates. The vector must carry exactly one 0/1 entry per candidate.
// A selection whose size misses Scenario.NewStations is still mapped; the
// mismatch is recorded in Placement.Violation, never silently corrected.
func MapSelection(s *Scenario, selection []int) (*Placement, error) {
	const op = "MapSelection"

	if s == nil {
		err := errors.New("scenario is nil")
		return nil, WrapError(err, "placement: "+op)
	}
	if len(selection) != len(s.Candidates) {
		err := fmt.Errorf("%w: selection has %d entries for %d candidates",
			ErrInvalidSelection, len(selection), len(s.Candidates))
		return nil, WrapError(err, "placement: "+op)
	}

	p := &Placement{}
	for i, bit := range selection {
		switch bit {
		case 0:
		case 1:
			p.Indices = append(p.Indices, i)
			p.Sites = append(p.Sites, s.Candidates[i])
		default:
			err := fmt.Errorf("%w: entry %d is %d, want 0 or 1",
				ErrInvalidSelection, i, bit)
			return nil, WrapError(err, "placement: "+op)
		}
	}

	if got := len(p.Sites); got != s.NewStations {
		p.Violation = &ConstraintViolation{Want: s.NewStations, Got: got}
	}

	return p, nil
}
