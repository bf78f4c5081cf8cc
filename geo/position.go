// Package geo provides the geometric primitives of the coordination core:
// positions in replicated coordinate space and rectangular regions in
// north-west / south-east convention.
package geo

import (
	"fmt"
	"math"

	"github.com/openswarm-io/skysweep/core"
)

// Position is a latitude/longitude pair with an optional altitude.
// Positions are value types; equality is always checked against a tolerance,
// never bitwise.
type Position struct {
	Lat float64
	Lon float64
	Alt float64
}

// NewPosition builds a 2D position.
func NewPosition(lat, lon float64) Position {
	return Position{Lat: lat, Lon: lon}
}

// Valid reports whether both coordinates are real numbers.
func (p Position) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		!math.IsInf(p.Lat, 0) && !math.IsInf(p.Lon, 0)
}

func (p Position) String() string {
	return fmt.Sprintf("(%.7f, %.7f)", p.Lat, p.Lon)
}

// DistanceReached reports whether a is within tol degrees of b on each axis
// independently. This is deliberately a per-axis bound, not a geodesic
// distance: the original controller used the same check and the tolerance is
// configured accordingly.
//
// NaN coordinates fail fast with ErrMalformedPosition instead of silently
// comparing false, which would stall a covering agent forever.
func DistanceReached(a, b Position, tol float64) (bool, error) {
	if !a.Valid() || !b.Valid() {
		return false, fmt.Errorf("%w: %v vs %v", core.ErrMalformedPosition, a, b)
	}
	if tol <= 0 || math.IsNaN(tol) {
		return false, fmt.Errorf("%w: tolerance %v", core.ErrMalformedPosition, tol)
	}
	return math.Abs(a.Lat-b.Lat) < tol && math.Abs(a.Lon-b.Lon) < tol, nil
}
