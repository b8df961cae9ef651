// Agent spawning: builds the initial population with positions, kinds,
// opinions, integrities, and (scheduled variant) roles and structure
// memberships. All draws happen in id order so a seed fixes the
// population exactly.
package agents

import (
	"fmt"
	"math"

	"github.com/talgya/agora/internal/entropy"
	"github.com/talgya/agora/internal/world"
)

// SpawnConfig controls initial population generation.
type SpawnConfig struct {
	Population            int
	HighIntegrityFraction float64
	Opinions              int
	IntegrityMin          float64
	IntegrityMax          float64
	EnforceOccupancy      bool

	// Scheduled variant.
	Scheduled         bool
	WorkerProbability float64
}

// SpawnPopulation creates the full population on the given grid.
// Placement respects single occupancy when EnforceOccupancy is set;
// structures may be nil when the scheduled variant is off.
func SpawnPopulation(cfg SpawnConfig, grid *world.Grid, structures []world.Structure, src *entropy.Source) ([]*Agent, error) {
	n := cfg.Population
	if cfg.EnforceOccupancy && n > grid.Capacity() {
		return nil, fmt.Errorf("population %d exceeds grid capacity %d", n, grid.Capacity())
	}

	population := make([]*Agent, n)

	// Positions first, one agent at a time. With occupancy enforcement
	// we rejection-sample until an empty cell turns up.
	for id := 0; id < n; id++ {
		a := &Agent{
			ID:      AgentID(id),
			Home:    NoStructure,
			Work:    NoStructure,
			Leisure: NoStructure,
		}
		for {
			c := world.Coord{X: src.Intn(grid.Width), Y: src.Intn(grid.Height)}
			if cfg.EnforceOccupancy && grid.Occupied(c) {
				continue
			}
			a.Position = c
			grid.Place(id, c)
			break
		}
		population[id] = a
	}

	// Kinds: a fixed count of high-integrity agents, spread by a
	// random permutation.
	numHigh := int(math.Round(cfg.HighIntegrityFraction * float64(n)))
	perm := src.Perm(n)
	for _, idx := range perm[:numHigh] {
		population[idx].Kind = KindHighIntegrity
	}

	// Opinions and integrities, id order.
	for _, a := range population {
		a.Opinion = src.Intn(cfg.Opinions)
		if a.Kind == KindHighIntegrity {
			a.Integrity = 1
		} else {
			a.Integrity = cfg.IntegrityMin + src.Float64()*(cfg.IntegrityMax-cfg.IntegrityMin)
		}
	}

	if cfg.Scheduled {
		assignSchedules(cfg, population, structures, src)
	}

	return population, nil
}

// assignSchedules draws roles and assigns structure memberships by
// round-robin over each category's structure list, keyed on agent id.
func assignSchedules(cfg SpawnConfig, population []*Agent, structures []world.Structure, src *entropy.Source) {
	byCategory := make(map[world.StructureCategory][]int)
	for idx, s := range structures {
		byCategory[s.Category] = append(byCategory[s.Category], idx)
	}
	homes := byCategory[world.CategoryHome]
	workplaces := byCategory[world.CategoryWork]
	schools := byCategory[world.CategorySchool]
	venues := byCategory[world.CategoryLeisure]

	for i, a := range population {
		if src.Bernoulli(cfg.WorkerProbability) {
			a.Role = RoleWorker
			a.Work = workplaces[i%len(workplaces)]
		} else {
			a.Role = RoleStudent
			a.Work = schools[i%len(schools)]
		}
		a.Home = homes[i%len(homes)]
		a.Leisure = venues[i%len(venues)]
	}
}
