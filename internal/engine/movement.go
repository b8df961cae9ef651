// Movement engine. Each step every agent, in id order, proposes one
// unit move; a proposal that would leave the grid (or land on an
// occupied cell when occupancy enforcement is on) is rejected and the
// agent stays in place for the step.
package engine

import (
	"github.com/talgya/agora/internal/agents"
	"github.com/talgya/agora/internal/world"
)

var cardinals = [4]world.Coord{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// moveAgents resolves one movement proposal per agent. Proposals are
// resolved sequentially in id order, so a cell freed earlier in the
// same step can be taken by a later agent.
func (s *Simulation) moveAgents() {
	for _, a := range s.population {
		var dest world.Coord
		if s.cfg.Schedule.Enabled {
			dest = s.scheduledProposal(a)
		} else {
			dest = s.randomStep(a.Position)
		}

		if !s.grid.InBounds(dest) {
			continue
		}
		if s.cfg.EnforceOccupancy && s.grid.Occupied(dest) {
			continue
		}
		s.grid.Move(int(a.ID), a.Position, dest)
		a.Position = dest
	}
}

// randomStep proposes a unit step in a uniformly chosen cardinal
// direction.
func (s *Simulation) randomStep(from world.Coord) world.Coord {
	d := cardinals[s.src.Intn(4)]
	return world.Coord{X: from.X + d.X, Y: from.Y + d.Y}
}

// scheduledProposal implements the scheduled variant: a plain random
// walk while the agent is already inside its target structure, and a
// greedy unit step toward the structure's center otherwise. When both
// axes move the agent closer, one is chosen at random.
func (s *Simulation) scheduledProposal(a *agents.Agent) world.Coord {
	target := s.structures[s.targetStructure(a)]
	if target.Contains(a.Position) {
		return s.randomStep(a.Position)
	}

	dx := sign(target.Center.X - a.Position.X)
	dy := sign(target.Center.Y - a.Position.Y)
	switch {
	case dx != 0 && dy != 0:
		if s.src.Intn(2) == 0 {
			dy = 0
		} else {
			dx = 0
		}
	case dx == 0 && dy == 0:
		// Already at the center; hold position this step.
		return a.Position
	}
	return world.Coord{X: a.Position.X + dx, Y: a.Position.Y + dy}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
