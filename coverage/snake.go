package coverage

import (
	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// Snake covers its strip with parallel east-west sweep lines spaced by the
// configured line width, alternating direction on every line (boustrophedon)
// to minimize turns. The final waypoint is the far corner of the last line.
type Snake struct {
	lineWidth   float64
	cell        geo.Region
	waypoints   []geo.Position
	next        int
	initialized bool
}

// NewSnake creates an uninitialized Snake strategy.
func NewSnake(cfg Config) *Snake {
	lw := cfg.LineWidth
	if lw <= 0 {
		lw = 0.5
	}
	return &Snake{lineWidth: lw}
}

func (s *Snake) Name() string { return StrategySnake }

// Initialize computes this agent's strip and discretizes it into sweep
// lines. The waypoint sequence is fully determined by (rank, area,
// peerCount) and the configured line width.
func (s *Snake) Initialize(rank int, area geo.Region, peerCount int) (geo.Region, error) {
	cell, err := partition(rank, area, peerCount)
	if err != nil {
		return geo.Region{}, err
	}

	s.cell = cell
	s.waypoints = sweepLines(cell, s.lineWidth)
	s.next = 0
	s.initialized = true
	return cell, nil
}

func (s *Snake) NextTarget() (geo.Position, error) {
	if !s.initialized {
		return geo.Position{}, core.ErrNotInitialized
	}
	if s.next >= len(s.waypoints) {
		return geo.Position{}, core.ErrSequenceExhausted
	}
	target := s.waypoints[s.next]
	s.next++
	return target, nil
}

func (s *Snake) IsFinalTarget() bool {
	return s.initialized && s.next >= len(s.waypoints)
}

// sweepLines discretizes a cell into boustrophedon waypoints. Lines run at
// constant latitude starting from the cell's north edge, stepping south by
// lineWidth; the last line is clamped to the south edge so the far corner of
// the cell is always covered.
func sweepLines(cell geo.Region, lineWidth float64) []geo.Position {
	west := cell.TopLeft.Lon
	east := cell.BottomRight.Lon
	top := cell.TopLeft.Lat
	bottom := cell.BottomRight.Lat

	var lats []float64
	lat := top
	for lat > bottom {
		lats = append(lats, lat)
		lat -= lineWidth
	}
	lats = append(lats, bottom)

	waypoints := make([]geo.Position, 0, 2*len(lats))
	for i, l := range lats {
		if west == east {
			// Degenerate zero-width cell: one waypoint per line.
			waypoints = append(waypoints, geo.Position{Lat: l, Lon: west})
			continue
		}
		if i%2 == 0 {
			waypoints = append(waypoints,
				geo.Position{Lat: l, Lon: west},
				geo.Position{Lat: l, Lon: east})
		} else {
			waypoints = append(waypoints,
				geo.Position{Lat: l, Lon: east},
				geo.Position{Lat: l, Lon: west})
		}
	}
	return waypoints
}
