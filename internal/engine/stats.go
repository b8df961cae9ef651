// Per-step aggregates and snapshots, the only outputs the
// visualization and reporting collaborators consume.
package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/agora/internal/agents"
	"github.com/talgya/agora/internal/world"
)

// StepStats holds the aggregates for one completed step.
type StepStats struct {
	Step          int     `json:"step"`
	OpinionCounts []int   `json:"opinion_counts"`
	MeanIntegrity float64 `json:"mean_integrity"`

	// TargetCounts is indexed by world.StructureCategory; nil unless
	// the scheduled variant is on.
	TargetCounts []int `json:"target_counts,omitempty"`
}

// AgentSnapshot is one agent's externally visible state.
type AgentSnapshot struct {
	ID        int         `json:"id"`
	Position  world.Coord `json:"position"`
	Opinion   int         `json:"opinion"`
	Integrity float64     `json:"integrity"`
	Kind      agents.Kind `json:"kind"`
}

// Snapshot is the full per-step output: every agent's state plus the
// step aggregates.
type Snapshot struct {
	Step   int             `json:"step"`
	Stats  StepStats       `json:"stats"`
	Agents []AgentSnapshot `json:"agents"`
}

// aggregate computes the current step's statistics.
func (s *Simulation) aggregate() StepStats {
	stats := StepStats{
		Step:          s.step,
		OpinionCounts: make([]int, s.cfg.Opinions),
	}

	integrities := make([]float64, len(s.population))
	for i, a := range s.population {
		stats.OpinionCounts[a.Opinion]++
		integrities[i] = a.Integrity
	}
	stats.MeanIntegrity = stat.Mean(integrities, nil)

	if s.cfg.Schedule.Enabled {
		stats.TargetCounts = make([]int, 4)
		for _, a := range s.population {
			stats.TargetCounts[s.targetCategory(a)]++
		}
	}
	return stats
}

// Snapshot captures every agent's state as of the last completed step.
func (s *Simulation) Snapshot() *Snapshot {
	snap := &Snapshot{
		Step:   s.step,
		Stats:  s.stats,
		Agents: make([]AgentSnapshot, len(s.population)),
	}
	for i, a := range s.population {
		snap.Agents[i] = AgentSnapshot{
			ID:        int(a.ID),
			Position:  a.Position,
			Opinion:   a.Opinion,
			Integrity: a.Integrity,
			Kind:      a.Kind,
		}
	}
	return snap
}
