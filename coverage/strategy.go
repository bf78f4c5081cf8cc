// Package coverage implements the interchangeable area-coverage strategies.
//
// Every strategy computes, from (rank, area, peerCount) alone, the cell this
// agent will cover and a finite waypoint sequence over it. Determinism is
// the whole point: independent agents evaluating the same replicated
// snapshot must arrive at the same partition without negotiation, so nothing
// here may depend on hidden state, wall-clock time or randomness that is not
// explicitly seeded.
package coverage

import (
	"fmt"
	"time"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// Strategy names accepted by New and by assignment records in the store.
const (
	StrategySnake     = "snake"
	StrategyRandom    = "random"
	StrategyInsideOut = "insideout"
	StrategyMinTime   = "mintime"
)

// Strategy is the contract shared by all coverage variants.
type Strategy interface {
	// Initialize computes this agent's cell from its rank among peerCount
	// available peers and the full search area. Deterministic: identical
	// arguments always yield an identical cell. Fails with ErrNoAgents
	// when peerCount is 0 and ErrNotAvailable when rank is out of range.
	Initialize(rank int, area geo.Region, peerCount int) (geo.Region, error)

	// NextTarget advances and returns the next waypoint of the current
	// cell's sequence. Returns ErrSequenceExhausted past the final
	// waypoint; only a fresh Initialize restarts the sequence.
	NextTarget() (geo.Position, error)

	// IsFinalTarget reports whether NextTarget has produced the last
	// waypoint of the current cell.
	IsFinalTarget() bool

	// Name returns the strategy's registered name.
	Name() string
}

// PositionAware is implemented by strategies whose waypoint choice depends
// on the agent's current position (MinTime). The controller feeds the
// replicated own-position into it each tick; strategies that do not need it
// simply do not implement the interface.
type PositionAware interface {
	UpdatePosition(p geo.Position)
}

// Config carries the strategy tuning parameters. Zero values fall back to
// sensible defaults in each variant.
type Config struct {
	// LineWidth is the sweep-line spacing (Snake) and default grid spacing
	// (MinTime), in degrees.
	LineWidth float64

	// MinTimeDelta overrides LineWidth as the MinTime grid spacing when >0.
	MinTimeDelta float64

	// RandomTargetBudget bounds the Random sequence; 0 means unbounded.
	RandomTargetBudget int

	// SubdivideRandom makes Random sample from the agent's strip instead of
	// the whole area.
	SubdivideRandom bool

	// Seed fixes the Random variant's sample sequence; 0 draws a seed from
	// the clock.
	Seed int64

	// TravelCostWeight scales MinTime's travel-cost penalty against
	// staleness. Defaults to 1.
	TravelCostWeight float64

	// Now is the clock used by MinTime recency stamps; defaults to
	// time.Now. Injectable for tests.
	Now func() time.Time
}

// New constructs the named strategy variant.
func New(name string, cfg Config) (Strategy, error) {
	switch name {
	case StrategySnake:
		return NewSnake(cfg), nil
	case StrategyRandom:
		return NewRandom(cfg), nil
	case StrategyInsideOut:
		return NewInsideOut(cfg), nil
	case StrategyMinTime:
		return NewMinTime(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownStrategy, name)
	}
}

// partition slices the area into peerCount horizontal strips of equal
// height, north to south, and returns the strip for rank. Rank 0 covers the
// northernmost strip. The strips are pairwise disjoint (up to their shared
// boundary line) and their union is exactly the area, which is what makes
// concurrently-covering agents complementary rather than redundant.
func partition(rank int, area geo.Region, peerCount int) (geo.Region, error) {
	if peerCount <= 0 {
		return geo.Region{}, fmt.Errorf("%w: peer count %d", core.ErrNoAgents, peerCount)
	}
	if rank < 0 || rank >= peerCount {
		return geo.Region{}, fmt.Errorf("%w: rank %d outside [0,%d)",
			core.ErrNotAvailable, rank, peerCount)
	}

	stripHeight := area.LatSpan() / float64(peerCount)
	top := area.TopLeft.Lat - float64(rank)*stripHeight
	bottom := top - stripHeight
	if rank == peerCount-1 {
		// Absorb accumulated floating-point error on the last strip.
		bottom = area.BottomRight.Lat
	}

	return geo.NewRegion(
		geo.Position{Lat: top, Lon: area.TopLeft.Lon},
		geo.Position{Lat: bottom, Lon: area.BottomRight.Lon},
	)
}
