package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswarm-io/skysweep/core"
)

// TestNewRegion verifies the north-west/south-east corner convention.
func TestNewRegion(t *testing.T) {
	t.Run("valid rectangle", func(t *testing.T) {
		r, err := NewRegion(Position{Lat: 10, Lon: 20}, Position{Lat: 0, Lon: 30})
		require.NoError(t, err)
		assert.Equal(t, Rectangle, r.Kind)
		assert.Equal(t, 10.0, r.LatSpan())
		assert.Equal(t, 10.0, r.LonSpan())
	})

	t.Run("degenerate corners make a point", func(t *testing.T) {
		p := Position{Lat: 5, Lon: 5}
		r, err := NewRegion(p, p)
		require.NoError(t, err)
		assert.Equal(t, Point, r.Kind)
		assert.Equal(t, 0.0, r.LatSpan())
	})

	t.Run("inverted latitude is rejected", func(t *testing.T) {
		_, err := NewRegion(Position{Lat: 0, Lon: 20}, Position{Lat: 10, Lon: 30})
		assert.ErrorIs(t, err, core.ErrMalformedRegion)
	})

	t.Run("inverted longitude is rejected", func(t *testing.T) {
		_, err := NewRegion(Position{Lat: 10, Lon: 30}, Position{Lat: 0, Lon: 20})
		assert.ErrorIs(t, err, core.ErrMalformedRegion)
	})

	t.Run("NaN corner is rejected", func(t *testing.T) {
		_, err := NewRegion(Position{Lat: math.NaN(), Lon: 20}, Position{Lat: 0, Lon: 30})
		assert.ErrorIs(t, err, core.ErrMalformedRegion)
	})
}

// TestBoundingBox verifies normalization of arbitrarily ordered corners.
func TestBoundingBox(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Position
	}{
		{"already NW/SE", Position{Lat: 10, Lon: 20}, Position{Lat: 0, Lon: 30}},
		{"SE/NW", Position{Lat: 0, Lon: 30}, Position{Lat: 10, Lon: 20}},
		{"NE/SW", Position{Lat: 10, Lon: 30}, Position{Lat: 0, Lon: 20}},
		{"SW/NE", Position{Lat: 0, Lon: 20}, Position{Lat: 10, Lon: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := BoundingBox(tt.p1, tt.p2)
			require.NoError(t, err)
			assert.Equal(t, Position{Lat: 10, Lon: 20}, r.TopLeft)
			assert.Equal(t, Position{Lat: 0, Lon: 30}, r.BottomRight)
		})
	}
}

// TestRegionContains verifies boundary-inclusive membership.
func TestRegionContains(t *testing.T) {
	r, err := NewRegion(Position{Lat: 10, Lon: 20}, Position{Lat: 0, Lon: 30})
	require.NoError(t, err)

	assert.True(t, r.Contains(Position{Lat: 5, Lon: 25}))
	assert.True(t, r.Contains(Position{Lat: 10, Lon: 20}), "corners are inside")
	assert.True(t, r.Contains(Position{Lat: 0, Lon: 30}))
	assert.True(t, r.Contains(Position{Lat: 10, Lon: 25}), "edges are inside")

	assert.False(t, r.Contains(Position{Lat: 10.1, Lon: 25}))
	assert.False(t, r.Contains(Position{Lat: 5, Lon: 19.9}))
}

func TestRegionCenter(t *testing.T) {
	r, err := NewRegion(Position{Lat: 10, Lon: 20}, Position{Lat: 0, Lon: 30})
	require.NoError(t, err)
	assert.Equal(t, Position{Lat: 5, Lon: 25}, r.Center())
}
