package coverage

import (
	"math"
	"sort"
	"time"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// gridCell is an absolute grid index: lat = Row*delta, lon = Col*delta.
// Absolute quantization keeps indices stable when the search area changes,
// so recency stamps survive re-initialization.
type gridCell struct {
	Row int
	Col int
}

// MinTime maintains a discretized grid of valid positions over the search
// area with a recency stamp per grid cell, and greedily targets the stalest
// reachable cell, penalized by travel cost from the current position. The
// choice is locally greedy, not globally optimal.
//
// Unlike the other variants this strategy is stateful across the whole
// mission: Initialize extends the grid to a new area but never clears the
// stamps, so coverage history persists through strategy switches back and
// re-assignments.
type MinTime struct {
	delta       float64
	weight      float64
	now         func() time.Time
	stamps      map[gridCell]time.Time
	valid       []gridCell
	current     geo.Position
	hasPosition bool
	initialized bool
}

// NewMinTime creates a MinTime strategy with an empty grid.
func NewMinTime(cfg Config) *MinTime {
	delta := cfg.MinTimeDelta
	if delta <= 0 {
		delta = cfg.LineWidth
	}
	if delta <= 0 {
		delta = 0.5
	}
	weight := cfg.TravelCostWeight
	if weight <= 0 {
		weight = 1
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &MinTime{
		delta:  delta,
		weight: weight,
		now:    now,
		stamps: make(map[gridCell]time.Time),
	}
}

func (m *MinTime) Name() string { return StrategyMinTime }

// UpdatePosition feeds the agent's current position into the travel-cost
// term. Without it the cell centroid is used as the starting point.
func (m *MinTime) UpdatePosition(p geo.Position) {
	if p.Valid() {
		m.current = p
		m.hasPosition = true
	}
}

// Initialize discretizes the area into grid positions. The rank/peerCount
// guards apply as for every variant, but MinTime does not sub-partition: all
// peers share the grid and staleness drives them apart naturally.
func (m *MinTime) Initialize(rank int, area geo.Region, peerCount int) (geo.Region, error) {
	if _, err := partition(rank, area, peerCount); err != nil {
		return geo.Region{}, err
	}

	m.valid = m.valid[:0]
	minRow := int(math.Floor(area.BottomRight.Lat / m.delta))
	maxRow := int(math.Ceil(area.TopLeft.Lat / m.delta))
	minCol := int(math.Floor(area.TopLeft.Lon / m.delta))
	maxCol := int(math.Ceil(area.BottomRight.Lon / m.delta))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			c := gridCell{Row: row, Col: col}
			if area.Contains(m.position(c)) {
				m.valid = append(m.valid, c)
			}
		}
	}

	// Deterministic iteration order for tie-breaking.
	sort.Slice(m.valid, func(i, j int) bool {
		if m.valid[i].Row != m.valid[j].Row {
			return m.valid[i].Row > m.valid[j].Row
		}
		return m.valid[i].Col < m.valid[j].Col
	})

	if !m.hasPosition {
		m.current = area.Center()
	}
	m.initialized = true
	return area, nil
}

// NextTarget selects the grid cell with the best staleness-minus-travel-cost
// score, stamps it as visited now, and returns it. The sequence never
// exhausts; a MinTime mission runs until externally stopped.
func (m *MinTime) NextTarget() (geo.Position, error) {
	if !m.initialized {
		return geo.Position{}, core.ErrNotInitialized
	}
	if len(m.valid) == 0 {
		return geo.Position{}, core.ErrSequenceExhausted
	}

	now := m.now()
	best := m.valid[0]
	bestScore := math.Inf(-1)
	for _, c := range m.valid {
		score := m.score(c, now)
		if score > bestScore {
			best = c
			bestScore = score
		}
	}

	m.stamps[best] = now
	target := m.position(best)
	m.current = target
	m.hasPosition = true
	return target, nil
}

// IsFinalTarget is always false: MinTime coverage has no geometric end.
func (m *MinTime) IsFinalTarget() bool { return false }

func (m *MinTime) position(c gridCell) geo.Position {
	return geo.Position{
		Lat: float64(c.Row) * m.delta,
		Lon: float64(c.Col) * m.delta,
	}
}

// score is seconds since the cell was last visited (never-visited cells are
// maximally stale), minus the travel cost in grid units scaled by the
// configured weight.
func (m *MinTime) score(c gridCell, now time.Time) float64 {
	staleness := math.Inf(1)
	if stamp, ok := m.stamps[c]; ok {
		staleness = now.Sub(stamp).Seconds()
	}

	p := m.position(c)
	travel := math.Hypot(p.Lat-m.current.Lat, p.Lon-m.current.Lon) / m.delta

	if math.IsInf(staleness, 1) {
		// Among unvisited cells only travel cost differentiates. The base
		// constant dominates any realistic staleness while keeping enough
		// precision for the travel term to matter.
		return 1e12 - m.weight*travel
	}
	return staleness - m.weight*travel
}
