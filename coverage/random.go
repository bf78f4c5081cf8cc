package coverage

import (
	"math/rand"
	"time"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// Random samples uniformly distributed waypoints inside its cell. By default
// the cell is the caller's whole assigned area - peers cover the same space
// redundantly rather than partitioning it, which is the inherited behavior;
// SubdivideRandom switches to the same strip partition the other variants
// use. "Final" is an external budget (RandomTargetBudget samples), not
// geometric exhaustion; with a zero budget the sequence never ends.
type Random struct {
	cfg         Config
	rng         *rand.Rand
	cell        geo.Region
	produced    int
	initialized bool
}

// NewRandom creates an uninitialized Random strategy.
func NewRandom(cfg Config) *Random {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (r *Random) Name() string { return StrategyRandom }

// Initialize records the sampling cell. The rank/peerCount guards still
// apply even when the cell is the whole area, so an agent that is not
// actually eligible cannot start sampling.
func (r *Random) Initialize(rank int, area geo.Region, peerCount int) (geo.Region, error) {
	cell, err := partition(rank, area, peerCount)
	if err != nil {
		return geo.Region{}, err
	}
	if !r.cfg.SubdivideRandom {
		cell = area
	}

	r.cell = cell
	r.produced = 0
	r.initialized = true
	return cell, nil
}

func (r *Random) NextTarget() (geo.Position, error) {
	if !r.initialized {
		return geo.Position{}, core.ErrNotInitialized
	}
	if r.cfg.RandomTargetBudget > 0 && r.produced >= r.cfg.RandomTargetBudget {
		return geo.Position{}, core.ErrSequenceExhausted
	}

	lat := r.cell.BottomRight.Lat + r.rng.Float64()*r.cell.LatSpan()
	lon := r.cell.TopLeft.Lon + r.rng.Float64()*r.cell.LonSpan()
	r.produced++
	return geo.Position{Lat: lat, Lon: lon}, nil
}

func (r *Random) IsFinalTarget() bool {
	return r.initialized &&
		r.cfg.RandomTargetBudget > 0 &&
		r.produced >= r.cfg.RandomTargetBudget
}
