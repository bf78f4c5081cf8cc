package controller

import (
	"context"
	"fmt"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// Bridge describes a registered communication bridge: two relay regions
// connecting a source endpoint to a sink endpoint.
type Bridge struct {
	ID             int
	SourceRegionID int
	SinkRegionID   int
	Source         geo.Region
	Sink           geo.Region
}

// BridgeBuilder computes and registers the relay regions for communication
// bridges. The downstream relay-placement logic that moves drones into the
// regions observes the published request flag; it is not part of this
// module.
type BridgeBuilder struct {
	store   core.KnowledgeStore
	counter *RegionCounter
	logger  core.Logger
}

// NewBridgeBuilder creates a builder sharing the mission controller's region
// counter, so bridge regions never collide with search-area regions.
func NewBridgeBuilder(store core.KnowledgeStore, counter *RegionCounter, logger core.Logger) *BridgeBuilder {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &BridgeBuilder{store: store, counter: counter, logger: logger}
}

// Build registers the bridge's source and sink relay regions and raises the
// bridge-requested flag.
//
// Bridges are expected to be created with densely increasing ids starting at
// 0; bridge.total is recorded as bridgeID+1 and gaps are not validated. All
// region writes are deferred and flushed together, so readers never observe
// a half-registered bridge; the request flag itself is written immediately
// as the terminal, observable side effect.
func (b *BridgeBuilder) Build(ctx context.Context, bridgeID int, start, end geo.Region) (Bridge, error) {
	startBox, err := geo.BoundingBox(start.TopLeft, start.BottomRight)
	if err != nil {
		return Bridge{}, fmt.Errorf("bridge %d start region: %w", bridgeID, err)
	}
	endBox, err := geo.BoundingBox(end.TopLeft, end.BottomRight)
	if err != nil {
		return Bridge{}, fmt.Errorf("bridge %d end region: %w", bridgeID, err)
	}

	bridge := Bridge{
		ID:             bridgeID,
		SourceRegionID: b.counter.Next(),
		Source:         startBox,
	}
	bridge.SinkRegionID = b.counter.Next()
	bridge.Sink = endBox

	if err := core.SetInt(ctx, b.store, core.KeyTotalBridges, bridgeID+1, core.Deferred()); err != nil {
		return Bridge{}, err
	}
	if err := core.SetInt(ctx, b.store, core.KeyBridgeSourceRegion(bridgeID), bridge.SourceRegionID, core.Deferred()); err != nil {
		return Bridge{}, err
	}
	if err := writeRegion(ctx, b.store, bridge.SourceRegionID, startBox); err != nil {
		return Bridge{}, err
	}
	if err := core.SetInt(ctx, b.store, core.KeyBridgeSinkRegion(bridgeID), bridge.SinkRegionID, core.Deferred()); err != nil {
		return Bridge{}, err
	}
	if err := writeRegion(ctx, b.store, bridge.SinkRegionID, endBox); err != nil {
		return Bridge{}, err
	}

	if err := b.store.Flush(ctx); err != nil {
		return Bridge{}, err
	}
	if err := core.SetBool(ctx, b.store, core.KeyBridgeRequested, true); err != nil {
		return Bridge{}, err
	}

	b.logger.Info("Bridge registered", map[string]interface{}{
		"bridge_id":     bridgeID,
		"source_region": bridge.SourceRegionID,
		"sink_region":   bridge.SinkRegionID,
	})
	return bridge, nil
}
