// Package agents provides the agent data model, initial population
// spawning, and friendship-graph construction.
package agents

import (
	"fmt"

	"github.com/talgya/agora/internal/world"
)

// AgentID is a unique identifier for an agent. IDs are assigned
// densely from zero at spawn time and are stable for the run.
type AgentID int

// Kind determines whether an agent's state can be influenced.
type Kind uint8

const (
	// KindRegular agents update opinion and integrity through
	// interactions.
	KindRegular Kind = 0
	// KindHighIntegrity agents hold integrity 1 forever and never
	// change opinion. They act as fixed influence sources.
	KindHighIntegrity Kind = 1
)

// Role determines an agent's daytime structure in the scheduled
// variant.
type Role uint8

const (
	RoleWorker  Role = 0
	RoleStudent Role = 1
)

// NoStructure marks an unassigned structure membership (basic variant).
const NoStructure = -1

// Agent is one individual in the simulation. Position is mutated only
// by movement, opinion and integrity only by interactions, and only
// for regular agents. Everything else is fixed after spawn.
type Agent struct {
	ID        AgentID     `json:"id"`
	Position  world.Coord `json:"position"`
	Opinion   int         `json:"opinion"`
	Integrity float64     `json:"integrity"`
	Kind      Kind        `json:"kind"`

	// Friends holds the ids of this agent's friendship edges, sorted
	// ascending. The relation is symmetric and never mutated after
	// construction.
	Friends []AgentID `json:"friends"`

	// Scheduled variant only. Structure memberships are indices into
	// the world structure list, NoStructure when the variant is off.
	Role    Role `json:"role"`
	Home    int  `json:"home"`
	Work    int  `json:"work"`
	Leisure int  `json:"leisure"`
}

// Validate checks the agent's own invariants: integrity bounds, the
// high-integrity fixed point, and the opinion range.
func (a *Agent) Validate(numOpinions, friendCap int) error {
	if a.Integrity < 0 || a.Integrity > 1 {
		return fmt.Errorf("agent %d: integrity %v out of [0,1]", a.ID, a.Integrity)
	}
	if a.Kind == KindHighIntegrity && a.Integrity != 1 {
		return fmt.Errorf("agent %d: high-integrity agent has integrity %v", a.ID, a.Integrity)
	}
	if a.Opinion < 0 || a.Opinion >= numOpinions {
		return fmt.Errorf("agent %d: opinion %d out of [0,%d)", a.ID, a.Opinion, numOpinions)
	}
	if len(a.Friends) > friendCap {
		return fmt.Errorf("agent %d: %d friends exceeds cap %d", a.ID, len(a.Friends), friendCap)
	}
	return nil
}
