package swarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswarm-io/skysweep/core"
)

// TestRank verifies the availability ranking over a non-contiguous roster.
func TestRank(t *testing.T) {
	agents := []AgentRecord{
		{ID: 0, Mobile: true, Busy: false, AssignedArea: 2},
		{ID: 5, Mobile: true, Busy: true, AssignedArea: 2},
		{ID: 8, Mobile: true, Busy: false, AssignedArea: 2},
	}

	t.Run("busy agents are excluded", func(t *testing.T) {
		rank, peers, err := Rank(8, 2, agents)
		require.NoError(t, err)
		assert.Equal(t, 1, rank, "agent 8 ranks after agent 0, skipping busy 5")
		assert.Equal(t, 2, peers)
	})

	t.Run("lowest eligible id ranks first", func(t *testing.T) {
		rank, peers, err := Rank(0, 2, agents)
		require.NoError(t, err)
		assert.Equal(t, 0, rank)
		assert.Equal(t, 2, peers)
	})

	t.Run("excluded caller gets ErrNotAvailable with peer count", func(t *testing.T) {
		_, peers, err := Rank(5, 2, agents)
		assert.ErrorIs(t, err, core.ErrNotAvailable)
		assert.Equal(t, 2, peers, "peer count still reported for observers")
	})
}

// TestRankFilters verifies each eligibility criterion independently.
func TestRankFilters(t *testing.T) {
	t.Run("immobile agents are excluded", func(t *testing.T) {
		agents := []AgentRecord{
			{ID: 1, Mobile: false, AssignedArea: 0},
			{ID: 2, Mobile: true, AssignedArea: 0},
		}
		rank, peers, err := Rank(2, 0, agents)
		require.NoError(t, err)
		assert.Equal(t, 0, rank)
		assert.Equal(t, 1, peers)
	})

	t.Run("other areas are excluded", func(t *testing.T) {
		agents := []AgentRecord{
			{ID: 1, Mobile: true, AssignedArea: 0},
			{ID: 2, Mobile: true, AssignedArea: 1},
		}
		rank, peers, err := Rank(1, 0, agents)
		require.NoError(t, err)
		assert.Equal(t, 0, rank)
		assert.Equal(t, 1, peers)
	})

	t.Run("empty eligible set is ErrNoAgents", func(t *testing.T) {
		agents := []AgentRecord{
			{ID: 1, Mobile: false, AssignedArea: 0},
		}
		_, _, err := Rank(1, 0, agents)
		assert.ErrorIs(t, err, core.ErrNoAgents)
	})
}

// TestRankSnapshotPurity verifies two calls over the same snapshot agree,
// regardless of record order.
func TestRankSnapshotPurity(t *testing.T) {
	forward := []AgentRecord{
		{ID: 3, Mobile: true, AssignedArea: 1},
		{ID: 7, Mobile: true, AssignedArea: 1},
		{ID: 11, Mobile: true, AssignedArea: 1},
	}
	reversed := []AgentRecord{forward[2], forward[1], forward[0]}

	for _, id := range []int{3, 7, 11} {
		r1, p1, err := Rank(id, 1, forward)
		require.NoError(t, err)
		r2, p2, err := Rank(id, 1, reversed)
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
		assert.Equal(t, p1, p2)
	}
}
