// Daily schedule for the structured variant. The schedule period is
// split into three equal phases (home, work-or-school, leisure) and
// an agent's target structure each step is a pure function of the step
// index and its role.
package engine

import (
	"github.com/talgya/agora/internal/agents"
	"github.com/talgya/agora/internal/world"
)

// SchedulePhase names a third of the schedule period.
type SchedulePhase uint8

const (
	PhaseHome SchedulePhase = iota
	PhaseWork
	PhaseLeisure
)

// phaseForStep maps a step index onto the schedule phase.
func phaseForStep(step, period int) SchedulePhase {
	t := step % period
	third := period / 3
	switch {
	case t < third:
		return PhaseHome
	case t < 2*third:
		return PhaseWork
	}
	return PhaseLeisure
}

// targetStructure returns the index of the structure the agent should
// head to at the current step. Workers target their workplace during
// the work phase, students their school; memberships were fixed at
// spawn.
func (s *Simulation) targetStructure(a *agents.Agent) int {
	switch phaseForStep(s.step, s.cfg.Schedule.Period) {
	case PhaseHome:
		return a.Home
	case PhaseWork:
		return a.Work
	}
	return a.Leisure
}

// targetCategory returns the category of the agent's current target,
// for the per-step target-location counts.
func (s *Simulation) targetCategory(a *agents.Agent) world.StructureCategory {
	return s.structures[s.targetStructure(a)].Category
}
