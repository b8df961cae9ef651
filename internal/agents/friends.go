// Friendship-graph construction. Friendships are built once at
// initialization: undirected, capped per agent, and restricted to
// pairs that share the same initial opinion. Opinions may drift apart
// later without breaking the edge.
package agents

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/talgya/agora/internal/entropy"
)

// BuildFriendGraph samples friendship edges for the population and
// fills each agent's Friends list. For every agent in id order a
// target degree is drawn uniformly from [1, cap], then candidate
// partners are drawn uniformly without replacement from the agents
// sharing its initial opinion until the target is met or candidates
// run out. An edge is only inserted while both endpoints are under
// the cap. Ending up short of the target is expected, not an error.
func BuildFriendGraph(population []*Agent, maxFriends int, src *entropy.Source) {
	g := simple.NewUndirectedGraph()
	for _, a := range population {
		g.AddNode(simple.Node(a.ID))
	}

	byOpinion := make(map[int][]int)
	for _, a := range population {
		byOpinion[a.Opinion] = append(byOpinion[a.Opinion], int(a.ID))
	}

	degree := func(id int) int {
		return g.From(int64(id)).Len()
	}

	for _, a := range population {
		id := int(a.ID)
		target := 1 + src.Intn(maxFriends)
		if degree(id) >= target {
			continue
		}

		// Candidates: same-opinion agents that are not self, not
		// already friends, and not at the cap.
		var candidates []int
		for _, other := range byOpinion[a.Opinion] {
			if other == id || g.HasEdgeBetween(int64(id), int64(other)) || degree(other) >= maxFriends {
				continue
			}
			candidates = append(candidates, other)
		}

		for degree(id) < target && len(candidates) > 0 {
			k := src.Intn(len(candidates))
			other := candidates[k]
			candidates = append(candidates[:k], candidates[k+1:]...)
			if degree(other) >= maxFriends {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(other)})
		}
	}

	// Flatten adjacency onto the agents, sorted for deterministic
	// iteration in the friend phase.
	for _, a := range population {
		a.Friends = a.Friends[:0]
		it := g.From(int64(a.ID))
		for it.Next() {
			a.Friends = append(a.Friends, AgentID(it.Node().ID()))
		}
		sort.Slice(a.Friends, func(i, j int) bool { return a.Friends[i] < a.Friends[j] })
	}
}

// ValidateFriendGraph checks that the flattened friend lists still
// form a symmetric relation within the cap. A failure here is an
// implementation bug, not a recoverable condition.
func ValidateFriendGraph(population []*Agent, maxFriends int) error {
	sets := make([]map[AgentID]bool, len(population))
	for i, a := range population {
		if len(a.Friends) > maxFriends {
			return fmt.Errorf("agent %d: %d friends exceeds cap %d", a.ID, len(a.Friends), maxFriends)
		}
		set := make(map[AgentID]bool, len(a.Friends))
		for _, f := range a.Friends {
			if f == a.ID {
				return fmt.Errorf("agent %d: self edge", a.ID)
			}
			set[f] = true
		}
		sets[i] = set
	}
	for _, a := range population {
		for _, f := range a.Friends {
			if !sets[f][a.ID] {
				return fmt.Errorf("asymmetric friend edge %d -> %d", a.ID, f)
			}
		}
	}
	return nil
}
