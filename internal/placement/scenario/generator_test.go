package scenario

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargeplan/chargeplan/internal/placement"
)

func testGridConfig() GridConfig {
	return GridConfig{
		Width:         6,
		Height:        5,
		POICount:      3,
		ExistingCount: 4,
		NewStations:   2,
	}
}

func TestGenerate(t *testing.T) {
	cfg := testGridConfig()
	s, err := Generate(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	assert.Equal(t, cfg.Width, s.Width)
	assert.Equal(t, cfg.Height, s.Height)
	assert.Len(t, s.POIs, cfg.POICount)
	assert.Len(t, s.Existing, cfg.ExistingCount)
	assert.Equal(t, cfg.NewStations, s.NewStations)

	// Existing stations are drawn without replacement, so the candidate set
	// is everything else on the grid.
	assert.Len(t, s.Candidates, cfg.Width*cfg.Height-cfg.ExistingCount)

	occupied := make(map[placement.Site]bool)
	for _, site := range s.Existing {
		assert.False(t, occupied[site], "existing stations must be distinct")
		occupied[site] = true
	}
	for _, c := range s.Candidates {
		assert.False(t, occupied[c], "candidate %v collides with an existing station", c)
	}

	for _, site := range append(append([]placement.Site{}, s.POIs...), s.Existing...) {
		assert.GreaterOrEqual(t, site.X, 0.0)
		assert.Less(t, site.X, float64(cfg.Width))
		assert.GreaterOrEqual(t, site.Y, 0.0)
		assert.Less(t, site.Y, float64(cfg.Height))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := testGridConfig()

	a, err := Generate(cfg, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := Generate(cfg, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, a, b, "the same seed must reproduce the scenario")

	c, err := Generate(cfg, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	assert.NotEqual(t, a.POIs, c.POIs, "a different seed should draw different sites")
}

func TestGenerateFullGrid(t *testing.T) {
	// Stations on every node leave no candidates, which Generate permits;
	// the builder is the layer that rejects empty candidate sets.
	cfg := GridConfig{Width: 2, Height: 2, ExistingCount: 4}
	s, err := Generate(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, s.Candidates)
}

func TestGridConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GridConfig
		wantErr string
	}{
		{
			name:    "zero width",
			cfg:     GridConfig{Width: 0, Height: 5},
			wantErr: "must be positive",
		},
		{
			name:    "negative height",
			cfg:     GridConfig{Width: 5, Height: -1},
			wantErr: "must be positive",
		},
		{
			name:    "negative count",
			cfg:     GridConfig{Width: 5, Height: 5, POICount: -2},
			wantErr: "must be non-negative",
		},
		{
			name:    "too many POIs",
			cfg:     GridConfig{Width: 2, Height: 2, POICount: 5},
			wantErr: "not large enough",
		},
		{
			name:    "stations exceed grid",
			cfg:     GridConfig{Width: 2, Height: 2, ExistingCount: 3, NewStations: 2},
			wantErr: "not large enough",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, placement.ErrInvalidScenario)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, err = Generate(tt.cfg, rand.New(rand.NewSource(1)))
			assert.Error(t, err, "Generate must reject what Validate rejects")
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, testGridConfig().Validate())
	})
}
