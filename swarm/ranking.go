package swarm

import (
	"fmt"
	"sort"

	"github.com/openswarm-io/skysweep/core"
)

// Rank computes the calling agent's 0-based position among the currently
// available peers assigned to the same search area, and the size of that
// peer set.
//
// An agent is eligible when it is mobile, not busy, and assigned to areaID.
// Eligible agents are ordered by id ascending - a stable total order, which
// is the tie-break that makes every agent reading an identical snapshot
// compute an identical ranking without negotiation.
//
// Rank is a pure function of its snapshot input. Two agents whose snapshots
// differ may transiently disagree; that is a convergence concern for the
// dissemination layer, not a defect here.
func Rank(selfID, areaID int, agents []AgentRecord) (rank, peerCount int, err error) {
	eligible := make([]int, 0, len(agents))
	for _, a := range agents {
		if a.Mobile && !a.Busy && a.AssignedArea == areaID {
			eligible = append(eligible, a.ID)
		}
	}

	if len(eligible) == 0 {
		return 0, 0, fmt.Errorf("%w: area %d", core.ErrNoAgents, areaID)
	}

	sort.Ints(eligible)
	for i, id := range eligible {
		if id == selfID {
			return i, len(eligible), nil
		}
	}

	return 0, len(eligible), fmt.Errorf("%w: agent %d in area %d",
		core.ErrNotAvailable, selfID, areaID)
}
