package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/coverage"
	"github.com/openswarm-io/skysweep/geo"
)

// MissionController is the fleet-facing orchestration surface. It publishes
// assignments and global parameters into the shared store and reads back
// aggregated fleet state. It never talks to an agent directly - the store's
// dissemination is the only channel, so everything here is just key writes.
type MissionController struct {
	store      core.KnowledgeStore
	counter    *RegionCounter
	bridges    *BridgeBuilder
	logger     core.Logger
	telemetry  core.Telemetry
	instanceID string
}

// GeneralParameters are the fleet-wide knobs published before a mission.
type GeneralParameters struct {
	TotalDevices    int
	CommRange       float64
	MinAltitude     float64
	AltitudeSpacing float64
	LineWidth       float64
}

// Detection is an aggregated sighting read back from the replicated
// detection keys.
type Detection struct {
	Position   geo.Position
	Confidence float64
}

// NewMissionController creates a controller with a fresh region counter.
func NewMissionController(store core.KnowledgeStore, logger core.Logger, telemetry core.Telemetry) *MissionController {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if telemetry == nil {
		telemetry = &core.NoOpTelemetry{}
	}
	counter := NewRegionCounter()
	return &MissionController{
		store:      store,
		counter:    counter,
		bridges:    NewBridgeBuilder(store, counter, logger),
		logger:     logger,
		telemetry:  telemetry,
		instanceID: uuid.New().String()[:8],
	}
}

// PublishRoster publishes the explicit list of agent ids participating in
// the mission. Agents rank against this roster; ids are never assumed
// contiguous.
func (m *MissionController) PublishRoster(ctx context.Context, ids []int) error {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	if err := m.store.Set(ctx, core.KeySwarmDeviceIDs, strings.Join(parts, ","), core.Deferred()); err != nil {
		return err
	}
	if err := core.SetInt(ctx, m.store, core.KeySwarmTotal, len(ids), core.Deferred()); err != nil {
		return err
	}
	return m.store.Flush(ctx)
}

// UpdateGeneralParameters publishes the fleet-wide mission parameters as one
// batch.
func (m *MissionController) UpdateGeneralParameters(ctx context.Context, p GeneralParameters) error {
	if err := core.SetInt(ctx, m.store, core.KeySwarmTotal, p.TotalDevices, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, m.store, core.KeyCommRange, p.CommRange, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, m.store, core.KeyMinAltitude, p.MinAltitude, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, m.store, core.KeyAltitudeSpacing, p.AltitudeSpacing, core.Deferred()); err != nil {
		return err
	}
	if p.LineWidth > 0 {
		if err := core.SetFloat(ctx, m.store, core.KeyCoverageLineWidth, p.LineWidth, core.Deferred()); err != nil {
			return err
		}
	}
	return m.store.Flush(ctx)
}

// RegisterSearchArea validates and publishes a search area. The area record
// references a region record allocated from the shared counter; area.total
// tracks areaID+1 the same way bridge.total does.
func (m *MissionController) RegisterSearchArea(ctx context.Context, areaID int, region geo.Region) error {
	validated, err := geo.NewRegion(region.TopLeft, region.BottomRight)
	if err != nil {
		return fmt.Errorf("search area %d: %w", areaID, err)
	}

	regionID := m.counter.Next()
	if err := core.SetInt(ctx, m.store, core.KeyAreaRegion(areaID), regionID, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetInt(ctx, m.store, core.KeyTotalSearchAreas, areaID+1, core.Deferred()); err != nil {
		return err
	}
	if err := writeRegion(ctx, m.store, regionID, validated); err != nil {
		return err
	}
	if err := m.store.Flush(ctx); err != nil {
		return err
	}

	m.logger.Info("Search area registered", map[string]interface{}{
		"area_id":   areaID,
		"region_id": regionID,
		"region":    validated.String(),
	})
	return nil
}

// AssignCoverage assigns a search area and a coverage strategy to each of
// the given agents. All writes are deferred and flushed once after the whole
// batch, bounding dissemination chatter and making the assignment appear
// atomic to readers.
func (m *MissionController) AssignCoverage(ctx context.Context, agentIDs []int, areaID int, strategyName string, lineWidth float64) error {
	// Validate the strategy name before publishing anything.
	if _, err := coverage.New(strategyName, coverage.Config{LineWidth: lineWidth}); err != nil {
		return err
	}

	for _, id := range agentIDs {
		if err := core.SetInt(ctx, m.store, core.KeyAssignedArea(id), areaID, core.Deferred()); err != nil {
			return err
		}
		if err := m.store.Set(ctx, core.KeyCoverageRequested(id), strategyName, core.Deferred()); err != nil {
			return err
		}
	}
	if lineWidth > 0 {
		if err := core.SetFloat(ctx, m.store, core.KeyCoverageLineWidth, lineWidth, core.Deferred()); err != nil {
			return err
		}
	}
	if err := m.store.Flush(ctx); err != nil {
		return err
	}

	m.telemetry.RecordMetric("mission.assignments", float64(len(agentIDs)), map[string]string{
		"strategy": strategyName,
	})
	m.logger.Info("Coverage assigned", map[string]interface{}{
		"agents":   len(agentIDs),
		"area_id":  areaID,
		"strategy": strategyName,
	})
	return nil
}

// RegisterBridge computes and publishes the relay regions for a bridge.
func (m *MissionController) RegisterBridge(ctx context.Context, bridgeID int, start, end geo.Region) (Bridge, error) {
	return m.bridges.Build(ctx, bridgeID, start, end)
}

// Takeoff publishes the fleet-wide takeoff command.
func (m *MissionController) Takeoff(ctx context.Context) error {
	return m.store.Set(ctx, core.KeySwarmCommand, core.CmdTakeoff)
}

// Land publishes the fleet-wide land command.
func (m *MissionController) Land(ctx context.Context) error {
	return m.store.Set(ctx, core.KeySwarmCommand, core.CmdLand)
}

// CurrentPositions reads the replicated position of every agent in ids.
// The result is not cached and not a consistent snapshot: callers tolerate
// replication skew, reading within a bounded window.
func (m *MissionController) CurrentPositions(ctx context.Context, ids []int) (map[int]geo.Position, error) {
	out := make(map[int]geo.Position, len(ids))
	for _, id := range ids {
		lat, set, err := core.GetFloat(ctx, m.store, core.KeyDeviceLat(id))
		if err != nil {
			return nil, err
		}
		if !set {
			continue
		}
		lon, _, err := core.GetFloat(ctx, m.store, core.KeyDeviceLon(id))
		if err != nil {
			return nil, err
		}
		alt, _, err := core.GetFloat(ctx, m.store, core.KeyDeviceAlt(id))
		if err != nil {
			return nil, err
		}
		out[id] = geo.Position{Lat: lat, Lon: lon, Alt: alt}
	}
	return out, nil
}

// CurrentDetections aggregates all replicated detection keys. Detections are
// coordinate-encoded key names; malformed entries are skipped rather than
// failing the whole readback.
func (m *MissionController) CurrentDetections(ctx context.Context) ([]Detection, error) {
	keys, err := m.store.Keys(ctx, core.KeyDetectionPrefix+"*")
	if err != nil {
		return nil, err
	}

	detections := make([]Detection, 0, len(keys))
	for _, key := range keys {
		coords := strings.TrimPrefix(key, core.KeyDetectionPrefix)
		parts := strings.Split(coords, "_")
		if len(parts) != 2 {
			m.logger.Warn("Skipping malformed detection key", map[string]interface{}{"key": key})
			continue
		}
		lat, latErr := strconv.ParseFloat(parts[0], 64)
		lon, lonErr := strconv.ParseFloat(parts[1], 64)
		if latErr != nil || lonErr != nil {
			m.logger.Warn("Skipping malformed detection key", map[string]interface{}{"key": key})
			continue
		}
		confidence, _, err := core.GetFloat(ctx, m.store, key)
		if err != nil {
			return nil, err
		}
		detections = append(detections, Detection{
			Position:   geo.Position{Lat: lat, Lon: lon},
			Confidence: confidence,
		})
	}
	return detections, nil
}

// ParseRoster decodes the published device-id list.
func ParseRoster(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: roster entry %q", core.ErrInvalidConfiguration, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
