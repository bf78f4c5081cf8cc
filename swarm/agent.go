// Package swarm models the replicated per-agent records and the
// availability ranking that turns them into a deterministic partition input.
package swarm

import (
	"context"
	"fmt"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// Unassigned marks an agent with no search area. Assigned area ids are >= 0.
const Unassigned = -1

// AgentRecord is the replicated state of one drone. Position, Mobile, Busy
// and AssignedAltitude are written by the owning agent; AssignedArea is
// written by the mission controller. Every agent reads every record during
// ranking.
type AgentRecord struct {
	ID               int
	Position         geo.Position
	Mobile           bool
	Busy             bool
	AssignedArea     int
	AssignedAltitude float64
}

// LoadAgent assembles one agent record from its replicated keys. A record
// whose keys have never been written reads as immobile and unassigned.
func LoadAgent(ctx context.Context, store core.KnowledgeStore, id int) (AgentRecord, error) {
	rec := AgentRecord{ID: id, AssignedArea: Unassigned}

	lat, latSet, err := core.GetFloat(ctx, store, core.KeyDeviceLat(id))
	if err != nil {
		return rec, err
	}
	lon, _, err := core.GetFloat(ctx, store, core.KeyDeviceLon(id))
	if err != nil {
		return rec, err
	}
	alt, _, err := core.GetFloat(ctx, store, core.KeyDeviceAlt(id))
	if err != nil {
		return rec, err
	}
	if latSet {
		rec.Position = geo.Position{Lat: lat, Lon: lon, Alt: alt}
	}

	if rec.Mobile, err = core.GetBool(ctx, store, core.KeyDeviceMobile(id)); err != nil {
		return rec, err
	}
	if rec.Busy, err = core.GetBool(ctx, store, core.KeyDeviceBusy(id)); err != nil {
		return rec, err
	}

	area, areaSet, err := core.GetInt(ctx, store, core.KeyAssignedArea(id))
	if err != nil {
		return rec, err
	}
	if areaSet {
		rec.AssignedArea = area
	}

	if rec.AssignedAltitude, _, err = core.GetFloat(ctx, store, core.KeyAssignedAltitude(id)); err != nil {
		return rec, err
	}

	return rec, nil
}

// LoadAgents assembles the records for an explicit id list. Agent ids are
// never assumed contiguous; the roster comes from the mission controller's
// published device list.
func LoadAgents(ctx context.Context, store core.KnowledgeStore, ids []int) ([]AgentRecord, error) {
	records := make([]AgentRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := LoadAgent(ctx, store, id)
		if err != nil {
			return nil, fmt.Errorf("loading agent %d: %w", id, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// PublishTelemetry writes the fields owned by the agent itself: position and
// the mobile/busy flags. Written immediately, not deferred - peers rank on
// the freshest available view.
func PublishTelemetry(ctx context.Context, store core.KnowledgeStore, rec AgentRecord) error {
	if !rec.Position.Valid() {
		return fmt.Errorf("%w: agent %d position", core.ErrMalformedPosition, rec.ID)
	}
	if err := core.SetFloat(ctx, store, core.KeyDeviceLat(rec.ID), rec.Position.Lat); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, store, core.KeyDeviceLon(rec.ID), rec.Position.Lon); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, store, core.KeyDeviceAlt(rec.ID), rec.Position.Alt); err != nil {
		return err
	}
	if err := core.SetBool(ctx, store, core.KeyDeviceMobile(rec.ID), rec.Mobile); err != nil {
		return err
	}
	return core.SetBool(ctx, store, core.KeyDeviceBusy(rec.ID), rec.Busy)
}
