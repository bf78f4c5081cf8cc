package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// TestRegisterSearchArea verifies the area record and its region become
// visible to other clients as one batch.
func TestRegisterSearchArea(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	mission := NewMissionController(board.Client("mission"), nil, nil)
	agent := board.Client("agent")

	area := geo.Region{
		TopLeft:     geo.Position{Lat: 10, Lon: 20},
		BottomRight: geo.Position{Lat: 0, Lon: 30},
	}
	require.NoError(t, mission.RegisterSearchArea(ctx, 0, area))

	regionID, set, err := core.GetInt(ctx, agent, core.KeyAreaRegion(0))
	require.NoError(t, err)
	require.True(t, set)
	assert.Equal(t, 0, regionID, "first region id is 0")

	got, err := readRegion(ctx, agent, regionID)
	require.NoError(t, err)
	assert.Equal(t, area.TopLeft, got.TopLeft)
	assert.Equal(t, area.BottomRight, got.BottomRight)

	total, set, err := core.GetInt(ctx, agent, core.KeyTotalSearchAreas)
	require.NoError(t, err)
	require.True(t, set)
	assert.Equal(t, 1, total)
}

// TestRegisterSearchAreaRejectsMalformed verifies nothing is published for a
// malformed region.
func TestRegisterSearchAreaRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	mission := NewMissionController(board.Client("mission"), nil, nil)
	agent := board.Client("agent")

	bad := geo.Region{
		TopLeft:     geo.Position{Lat: 0, Lon: 20},
		BottomRight: geo.Position{Lat: 10, Lon: 30}, // inverted latitudes
	}
	err := mission.RegisterSearchArea(ctx, 0, bad)
	assert.ErrorIs(t, err, core.ErrMalformedRegion)

	_, set, err := core.GetInt(ctx, agent, core.KeyAreaRegion(0))
	require.NoError(t, err)
	assert.False(t, set)
}

// TestAssignCoverageBatch verifies per-agent assignments land atomically and
// only for the listed agents.
func TestAssignCoverageBatch(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	mission := NewMissionController(board.Client("mission"), nil, nil)
	agent := board.Client("agent")

	require.NoError(t, mission.AssignCoverage(ctx, []int{0, 5, 8}, 0, "snake", 0.5))

	for _, id := range []int{0, 5, 8} {
		area, set, err := core.GetInt(ctx, agent, core.KeyAssignedArea(id))
		require.NoError(t, err)
		require.True(t, set, "agent %d", id)
		assert.Equal(t, 0, area)

		strategy, err := agent.Get(ctx, core.KeyCoverageRequested(id))
		require.NoError(t, err)
		assert.Equal(t, "snake", strategy)
	}

	_, set, err := core.GetInt(ctx, agent, core.KeyAssignedArea(3))
	require.NoError(t, err)
	assert.False(t, set, "unlisted agent stays unassigned")

	lw, set, err := core.GetFloat(ctx, agent, core.KeyCoverageLineWidth)
	require.NoError(t, err)
	require.True(t, set)
	assert.Equal(t, 0.5, lw)
}

// TestAssignCoverageUnknownStrategy verifies validation happens before any
// write.
func TestAssignCoverageUnknownStrategy(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	mission := NewMissionController(board.Client("mission"), nil, nil)
	agent := board.Client("agent")

	err := mission.AssignCoverage(ctx, []int{0}, 0, "perimeter", 0)
	assert.ErrorIs(t, err, core.ErrUnknownStrategy)

	_, set, err := core.GetInt(ctx, agent, core.KeyAssignedArea(0))
	require.NoError(t, err)
	assert.False(t, set)
}

// TestPublishRoster verifies the device list round trip.
func TestPublishRoster(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	mission := NewMissionController(board.Client("mission"), nil, nil)
	agent := board.Client("agent")

	require.NoError(t, mission.PublishRoster(ctx, []int{0, 5, 8}))

	raw, err := agent.Get(ctx, core.KeySwarmDeviceIDs)
	require.NoError(t, err)
	ids, err := ParseRoster(raw)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5, 8}, ids)

	total, set, err := core.GetInt(ctx, agent, core.KeySwarmTotal)
	require.NoError(t, err)
	require.True(t, set)
	assert.Equal(t, 3, total)
}

func TestParseRoster(t *testing.T) {
	ids, err := ParseRoster("0, 5,8")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5, 8}, ids)

	ids, err = ParseRoster("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = ParseRoster("0,x,2")
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

// TestFleetCommands verifies takeoff and land publish immediately.
func TestFleetCommands(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	mission := NewMissionController(board.Client("mission"), nil, nil)
	agent := board.Client("agent")

	require.NoError(t, mission.Takeoff(ctx))
	cmd, err := agent.Get(ctx, core.KeySwarmCommand)
	require.NoError(t, err)
	assert.Equal(t, core.CmdTakeoff, cmd)

	require.NoError(t, mission.Land(ctx))
	cmd, err = agent.Get(ctx, core.KeySwarmCommand)
	require.NoError(t, err)
	assert.Equal(t, core.CmdLand, cmd)
}

// TestCurrentDetections verifies coordinate-encoded detection keys are
// aggregated and malformed ones skipped.
func TestCurrentDetections(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	store := board.Client("mission")
	mission := NewMissionController(store, nil, nil)

	require.NoError(t, store.Set(ctx, core.KeyDetection(1.5, 2.5), "0.9"))
	require.NoError(t, store.Set(ctx, core.KeyDetection(-3.25, 4.0), "0.7"))
	require.NoError(t, store.Set(ctx, core.KeyDetectionPrefix+"garbage", "0.1"))

	detections, err := mission.CurrentDetections(ctx)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	byLat := map[float64]Detection{}
	for _, d := range detections {
		byLat[d.Position.Lat] = d
	}
	assert.Equal(t, 0.9, byLat[1.5].Confidence)
	assert.Equal(t, geo.Position{Lat: -3.25, Lon: 4.0}, byLat[-3.25].Position)
}

// TestCurrentPositions verifies agents without telemetry are skipped.
func TestCurrentPositions(t *testing.T) {
	ctx := context.Background()
	board := core.NewBoard()
	store := board.Client("mission")
	mission := NewMissionController(store, nil, nil)

	require.NoError(t, core.SetFloat(ctx, store, core.KeyDeviceLat(0), 1.5))
	require.NoError(t, core.SetFloat(ctx, store, core.KeyDeviceLon(0), 2.5))
	require.NoError(t, core.SetFloat(ctx, store, core.KeyDeviceAlt(0), 10))

	positions, err := mission.CurrentPositions(ctx, []int{0, 7})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, geo.Position{Lat: 1.5, Lon: 2.5, Alt: 10}, positions[0])
}
