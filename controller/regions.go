// Package controller contains the fleet-facing mission controller, the
// bridge region builder and the per-agent area-coverage state machine. All
// of them communicate exclusively through the shared knowledge store.
package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// RegionCounter allocates globally unique region ids for search areas and
// bridge relay regions. Exactly one counter exists per mission controller
// instance; uniqueness across controllers is a deployment invariant (one
// active mission controller per fleet), not something the counter enforces.
type RegionCounter struct {
	mu   sync.Mutex
	next int
}

// NewRegionCounter starts the id sequence at 0.
func NewRegionCounter() *RegionCounter {
	return &RegionCounter{}
}

// Next returns the next region id, monotonically increasing.
func (c *RegionCounter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	return id
}

// writeRegion publishes a region record as deferred writes; the caller
// decides when the batch becomes visible via Flush.
func writeRegion(ctx context.Context, store core.KnowledgeStore, regionID int, r geo.Region) error {
	if err := core.SetInt(ctx, store, core.KeyRegionType(regionID), int(r.Kind), core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, store, core.KeyRegionTopLeftLat(regionID), r.TopLeft.Lat, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, store, core.KeyRegionTopLeftLon(regionID), r.TopLeft.Lon, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, store, core.KeyRegionBotRightLat(regionID), r.BottomRight.Lat, core.Deferred()); err != nil {
		return err
	}
	return core.SetFloat(ctx, store, core.KeyRegionBotRightLon(regionID), r.BottomRight.Lon, core.Deferred())
}

// readRegion assembles a region record from the store. An absent record is
// reported as ErrAreaNotFound so callers can treat it as a transient
// replication gap rather than a malformed region.
func readRegion(ctx context.Context, store core.KnowledgeStore, regionID int) (geo.Region, error) {
	tlLat, set, err := core.GetFloat(ctx, store, core.KeyRegionTopLeftLat(regionID))
	if err != nil {
		return geo.Region{}, err
	}
	if !set {
		return geo.Region{}, fmt.Errorf("%w: region %d", core.ErrAreaNotFound, regionID)
	}
	tlLon, _, err := core.GetFloat(ctx, store, core.KeyRegionTopLeftLon(regionID))
	if err != nil {
		return geo.Region{}, err
	}
	brLat, _, err := core.GetFloat(ctx, store, core.KeyRegionBotRightLat(regionID))
	if err != nil {
		return geo.Region{}, err
	}
	brLon, _, err := core.GetFloat(ctx, store, core.KeyRegionBotRightLon(regionID))
	if err != nil {
		return geo.Region{}, err
	}
	return geo.NewRegion(
		geo.Position{Lat: tlLat, Lon: tlLon},
		geo.Position{Lat: brLat, Lon: brLon},
	)
}
