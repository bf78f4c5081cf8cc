package coverage

import (
	"math"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// angleStep is the fixed angular increment between spiral waypoints.
const angleStep = math.Pi / 4

// InsideOut covers its strip with an outward spiral: the first waypoint is
// the cell centroid, and each subsequent waypoint advances by a fixed
// angular step while the radius grows so that consecutive rings are spaced
// by the configured line width. The sequence ends at the last waypoint that
// still falls inside the cell.
type InsideOut struct {
	lineWidth   float64
	cell        geo.Region
	waypoints   []geo.Position
	next        int
	initialized bool
}

// NewInsideOut creates an uninitialized InsideOut strategy.
func NewInsideOut(cfg Config) *InsideOut {
	lw := cfg.LineWidth
	if lw <= 0 {
		lw = 0.5
	}
	return &InsideOut{lineWidth: lw}
}

func (io *InsideOut) Name() string { return StrategyInsideOut }

// Initialize computes this agent's strip and lays the spiral over it.
func (io *InsideOut) Initialize(rank int, area geo.Region, peerCount int) (geo.Region, error) {
	cell, err := partition(rank, area, peerCount)
	if err != nil {
		return geo.Region{}, err
	}

	io.cell = cell
	io.waypoints = spiral(cell, io.lineWidth)
	io.next = 0
	io.initialized = true
	return cell, nil
}

func (io *InsideOut) NextTarget() (geo.Position, error) {
	if !io.initialized {
		return geo.Position{}, core.ErrNotInitialized
	}
	if io.next >= len(io.waypoints) {
		return geo.Position{}, core.ErrSequenceExhausted
	}
	target := io.waypoints[io.next]
	io.next++
	return target, nil
}

func (io *InsideOut) IsFinalTarget() bool {
	return io.initialized && io.next >= len(io.waypoints)
}

// spiral generates the waypoint sequence: centroid first, then points on an
// Archimedean spiral whose radius grows by lineWidth per full turn. The
// spiral stops at the first point outside the cell; since the radius grows
// without bound the sequence is always finite.
func spiral(cell geo.Region, lineWidth float64) []geo.Position {
	center := cell.Center()
	waypoints := []geo.Position{center}

	radialStep := lineWidth * angleStep / (2 * math.Pi)
	angle := 0.0
	radius := 0.0
	for {
		angle += angleStep
		radius += radialStep
		p := geo.Position{
			Lat: center.Lat + radius*math.Sin(angle),
			Lon: center.Lon + radius*math.Cos(angle),
		}
		if !cell.Contains(p) {
			return waypoints
		}
		waypoints = append(waypoints, p)
	}
}
