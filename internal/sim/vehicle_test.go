package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
	"github.com/openswarm-io/skysweep/swarm"
)

// TestVehicleTakeoffAndTelemetry verifies the vehicle becomes mobile on the
// fleet takeoff command and publishes its record.
func TestVehicleTakeoffAndTelemetry(t *testing.T) {
	ctx := context.Background()
	store := core.NewInMemoryKnowledge()
	v := NewVehicle(0, geo.Position{Lat: 1, Lon: 2}, 0.5, store, nil)

	require.NoError(t, v.Tick(ctx))
	rec, err := swarm.LoadAgent(ctx, store, 0)
	require.NoError(t, err)
	assert.False(t, rec.Mobile, "parked before takeoff")

	require.NoError(t, store.Set(ctx, core.KeySwarmCommand, core.CmdTakeoff))
	require.NoError(t, v.Tick(ctx))
	rec, err = swarm.LoadAgent(ctx, store, 0)
	require.NoError(t, err)
	assert.True(t, rec.Mobile)
	assert.Equal(t, geo.Position{Lat: 1, Lon: 2}, rec.Position)
}

// TestVehicleMovesToTarget verifies stepping along the line to a GPS target
// and the final snap onto it.
func TestVehicleMovesToTarget(t *testing.T) {
	ctx := context.Background()
	store := core.NewInMemoryKnowledge()
	v := NewVehicle(0, geo.Position{}, 1.0, store, nil)

	require.NoError(t, store.Set(ctx, core.KeySwarmCommand, core.CmdTakeoff))
	require.NoError(t, core.SetFloat(ctx, store, core.KeyMoveTargetLat(0), 3))
	require.NoError(t, core.SetFloat(ctx, store, core.KeyMoveTargetLon(0), 0))
	require.NoError(t, store.Set(ctx, core.KeyDeviceCommand(0), core.CmdMoveToGPS))

	require.NoError(t, v.Tick(ctx))
	assert.InDelta(t, 1.0, v.Position().Lat, 1e-12, "one step per tick")

	require.NoError(t, v.Tick(ctx))
	require.NoError(t, v.Tick(ctx))
	assert.Equal(t, 3.0, v.Position().Lat, "snapped exactly onto the target")
	assert.Equal(t, 0.0, v.Position().Lon)

	// Standing on the target, further ticks stay put.
	require.NoError(t, v.Tick(ctx))
	assert.Equal(t, 3.0, v.Position().Lat)
}

// TestVehicleClimbs verifies the altitude command.
func TestVehicleClimbs(t *testing.T) {
	ctx := context.Background()
	store := core.NewInMemoryKnowledge()
	v := NewVehicle(0, geo.Position{}, 0.5, store, nil)

	require.NoError(t, store.Set(ctx, core.KeySwarmCommand, core.CmdTakeoff))
	require.NoError(t, core.SetFloat(ctx, store, core.KeyMoveTargetAlt(0), 2.5))
	require.NoError(t, store.Set(ctx, core.KeyDeviceCommand(0), core.CmdMoveToAltitude))

	for i := 0; i < 3; i++ {
		require.NoError(t, v.Tick(ctx))
	}
	assert.Equal(t, 2.5, v.Position().Alt, "climbs 1m per tick and snaps")
}

// TestVehicleLands verifies landing zeroes the altitude and grounds the
// vehicle.
func TestVehicleLands(t *testing.T) {
	ctx := context.Background()
	store := core.NewInMemoryKnowledge()
	v := NewVehicle(0, geo.Position{Lat: 1, Lon: 1, Alt: 10}, 0.5, store, nil)

	require.NoError(t, store.Set(ctx, core.KeySwarmCommand, core.CmdTakeoff))
	require.NoError(t, v.Tick(ctx))

	require.NoError(t, store.Set(ctx, core.KeySwarmCommand, core.CmdLand))
	require.NoError(t, v.Tick(ctx))

	rec, err := swarm.LoadAgent(ctx, store, 0)
	require.NoError(t, err)
	assert.False(t, rec.Mobile)
	assert.Equal(t, 0.0, rec.Position.Alt)
}
