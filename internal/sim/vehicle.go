// Package sim provides a minimal simulated vehicle for running the
// coordination core without flight hardware. The vehicle consumes the same
// movement-command keys a real platform adapter would, steps its position
// toward the commanded target each tick, and publishes telemetry back into
// the store.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
	"github.com/openswarm-io/skysweep/swarm"
)

// Vehicle is one simulated drone. It owns the agent's telemetry keys.
type Vehicle struct {
	id     int
	store  core.KnowledgeStore
	logger core.Logger

	// speed is the horizontal step per tick in degrees; climbRate the
	// vertical step per tick in meters.
	speed     float64
	climbRate float64

	position geo.Position
	flying   bool
}

// NewVehicle creates a vehicle parked at the given position.
func NewVehicle(id int, start geo.Position, speed float64, store core.KnowledgeStore, logger core.Logger) *Vehicle {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if speed <= 0 {
		speed = 0.05
	}
	return &Vehicle{
		id:        id,
		store:     store,
		logger:    logger,
		speed:     speed,
		climbRate: 1.0,
		position:  start,
	}
}

// Position returns the vehicle's current simulated position.
func (v *Vehicle) Position() geo.Position { return v.position }

// Register hooks the vehicle's Tick into the evaluation engine.
func (v *Vehicle) Register(ev core.Evaluator) {
	ev.Register(fmt.Sprintf("device.%d.vehicle", v.id), v.Tick)
}

// Tick applies the current fleet and device commands, advances the position
// one step, and publishes telemetry.
func (v *Vehicle) Tick(ctx context.Context) error {
	swarmCmd, err := v.store.Get(ctx, core.KeySwarmCommand)
	if err != nil {
		return err
	}
	switch swarmCmd {
	case core.CmdTakeoff:
		if !v.flying {
			v.flying = true
			v.logger.Info("Takeoff", map[string]interface{}{"agent": v.id})
		}
	case core.CmdLand:
		if v.flying {
			v.flying = false
			v.position.Alt = 0
			v.logger.Info("Landed", map[string]interface{}{"agent": v.id})
		}
	}

	if v.flying {
		if err := v.move(ctx); err != nil {
			return err
		}
	}

	return swarm.PublishTelemetry(ctx, v.store, swarm.AgentRecord{
		ID:       v.id,
		Position: v.position,
		Mobile:   v.flying,
		Busy:     false,
	})
}

func (v *Vehicle) move(ctx context.Context) error {
	cmd, err := v.store.Get(ctx, core.KeyDeviceCommand(v.id))
	if err != nil {
		return err
	}

	switch cmd {
	case core.CmdMoveToAltitude:
		alt, set, err := core.GetFloat(ctx, v.store, core.KeyMoveTargetAlt(v.id))
		if err != nil || !set {
			return err
		}
		v.position.Alt = stepToward(v.position.Alt, alt, v.climbRate)
	case core.CmdMoveToGPS:
		lat, latSet, err := core.GetFloat(ctx, v.store, core.KeyMoveTargetLat(v.id))
		if err != nil {
			return err
		}
		lon, lonSet, err := core.GetFloat(ctx, v.store, core.KeyMoveTargetLon(v.id))
		if err != nil {
			return err
		}
		if !latSet || !lonSet {
			return nil
		}
		v.stepTowardTarget(geo.Position{Lat: lat, Lon: lon})
		if alt, set, err := core.GetFloat(ctx, v.store, core.KeyMoveTargetAlt(v.id)); err != nil {
			return err
		} else if set {
			v.position.Alt = stepToward(v.position.Alt, alt, v.climbRate)
		}
	}
	return nil
}

// stepTowardTarget moves at most speed degrees along the straight line to
// the target, snapping exactly onto it when within one step. Snapping
// matters: the reach tolerance is far smaller than a step.
func (v *Vehicle) stepTowardTarget(target geo.Position) {
	dLat := target.Lat - v.position.Lat
	dLon := target.Lon - v.position.Lon
	dist := math.Hypot(dLat, dLon)
	if dist <= v.speed {
		v.position.Lat = target.Lat
		v.position.Lon = target.Lon
		return
	}
	v.position.Lat += dLat / dist * v.speed
	v.position.Lon += dLon / dist * v.speed
}

func stepToward(current, target, step float64) float64 {
	if math.Abs(target-current) <= step {
		return target
	}
	if target > current {
		return current + step
	}
	return current - step
}
