package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteString(t *testing.T) {
	assert.Equal(t, "(3,4)", Site{X: 3, Y: 4}.String())
	assert.Equal(t, "(1.5,-2)", Site{X: 1.5, Y: -2}.String())
}

func TestDefaultWeights(t *testing.T) {
	tests := []struct {
		name       string
		candidates int
		want       Weights
	}{
		{
			name:       "ten candidates",
			candidates: 10,
			want: Weights{
				POIAttraction:    40,
				StationRepulsion: 10.0 / 3.0,
				CandidateSpread:  17,
				CountPenalty:     1000,
			},
		},
		{
			name:       "grid sized",
			candidates: 221,
			want: Weights{
				POIAttraction:    884,
				StationRepulsion: 221.0 / 3.0,
				CandidateSpread:  375.7,
				CountPenalty:     10793861,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights(tt.candidates)
			assert.InDelta(t, tt.want.POIAttraction, w.POIAttraction, 1e-9)
			assert.InDelta(t, tt.want.StationRepulsion, w.StationRepulsion, 1e-9)
			assert.InDelta(t, tt.want.CandidateSpread, w.CandidateSpread, 1e-9)
			assert.InDelta(t, tt.want.CountPenalty, w.CountPenalty, 1e-9)
		})
	}
}

func TestConstraintViolationString(t *testing.T) {
	v := &ConstraintViolation{Want: 3, Got: 5}
	assert.Equal(t, "selected 5 sites, want exactly 3", v.String())
}
