package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// fakeClock steps a fixed interval per call, making staleness deterministic.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func newMinTimeUnderTest(t *testing.T) (*MinTime, geo.Region) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1000, 0), step: time.Second}
	m := NewMinTime(Config{MinTimeDelta: 1.0, Now: clock.Now})
	area := mustRegion(t,
		geo.Position{Lat: 2, Lon: 0},
		geo.Position{Lat: 0, Lon: 2},
	)
	return m, area
}

// TestMinTimePrefersUnvisited verifies unvisited grid cells always win over
// visited ones.
func TestMinTimePrefersUnvisited(t *testing.T) {
	m, area := newMinTimeUnderTest(t)
	_, err := m.Initialize(0, area, 1)
	require.NoError(t, err)

	seen := make(map[geo.Position]int)
	// The 3x3 one-degree grid over [0,2]x[0,2] has 9 cells; the first 9
	// targets must all be distinct.
	for i := 0; i < 9; i++ {
		p, err := m.NextTarget()
		require.NoError(t, err)
		seen[p]++
	}
	assert.Len(t, seen, 9, "every grid cell visited exactly once before any repeat")

	// The 10th target is a revisit.
	p, err := m.NextTarget()
	require.NoError(t, err)
	assert.Contains(t, seen, p)
}

// TestMinTimeNeverFinal verifies the mission only ends externally.
func TestMinTimeNeverFinal(t *testing.T) {
	m, area := newMinTimeUnderTest(t)
	_, err := m.Initialize(0, area, 1)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		_, err := m.NextTarget()
		require.NoError(t, err)
		assert.False(t, m.IsFinalTarget())
	}
}

// TestMinTimeTravelCostBreaksTies verifies that among equally stale cells the
// nearest is chosen.
func TestMinTimeTravelCostBreaksTies(t *testing.T) {
	m, area := newMinTimeUnderTest(t)
	_, err := m.Initialize(0, area, 1)
	require.NoError(t, err)

	// Start in the north-west corner of the grid.
	m.UpdatePosition(geo.Position{Lat: 2, Lon: 0})

	p, err := m.NextTarget()
	require.NoError(t, err)
	assert.Equal(t, geo.Position{Lat: 2, Lon: 0}, p, "nearest unvisited cell wins")
}

// TestMinTimeStatePersistsAcrossInitialize verifies the recency grid is
// mission-scoped: re-initializing (a strategy switch away and back) must not
// forget which cells were already covered.
func TestMinTimeStatePersistsAcrossInitialize(t *testing.T) {
	m, area := newMinTimeUnderTest(t)
	_, err := m.Initialize(0, area, 1)
	require.NoError(t, err)

	visited := make(map[geo.Position]bool)
	for i := 0; i < 4; i++ {
		p, err := m.NextTarget()
		require.NoError(t, err)
		visited[p] = true
	}

	// Simulate a switch to another strategy and back.
	_, err = m.Initialize(0, area, 1)
	require.NoError(t, err)

	// The next 5 targets must be exactly the 5 cells not yet visited.
	for i := 0; i < 5; i++ {
		p, err := m.NextTarget()
		require.NoError(t, err)
		assert.NotContains(t, visited, p, "already-covered cell re-targeted after re-initialize")
		visited[p] = true
	}
	assert.Len(t, visited, 9)
}

// TestMinTimeDeterministicSequence verifies two instances with identical
// clocks and inputs produce identical sequences.
func TestMinTimeDeterministicSequence(t *testing.T) {
	clockA := &fakeClock{now: time.Unix(1000, 0), step: time.Second}
	clockB := &fakeClock{now: time.Unix(1000, 0), step: time.Second}
	a := NewMinTime(Config{MinTimeDelta: 1.0, Now: clockA.Now})
	b := NewMinTime(Config{MinTimeDelta: 1.0, Now: clockB.Now})

	area := mustRegion(t, geo.Position{Lat: 3, Lon: 0}, geo.Position{Lat: 0, Lon: 3})
	_, err := a.Initialize(0, area, 1)
	require.NoError(t, err)
	_, err = b.Initialize(0, area, 1)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		pa, err := a.NextTarget()
		require.NoError(t, err)
		pb, err := b.NextTarget()
		require.NoError(t, err)
		assert.Equal(t, pa, pb, "step %d", i)
	}
}

func TestMinTimeGuards(t *testing.T) {
	m, area := newMinTimeUnderTest(t)

	_, err := m.NextTarget()
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	_, err = m.Initialize(2, area, 2)
	assert.ErrorIs(t, err, core.ErrNotAvailable)
}
