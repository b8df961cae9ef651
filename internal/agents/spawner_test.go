package agents

import (
	"testing"

	"github.com/talgya/agora/internal/entropy"
	"github.com/talgya/agora/internal/world"
)

func baseSpawnConfig() SpawnConfig {
	return SpawnConfig{
		Population:            80,
		HighIntegrityFraction: 0.25,
		Opinions:              3,
		IntegrityMin:          0.3,
		IntegrityMax:          0.7,
		EnforceOccupancy:      true,
	}
}

func TestSpawnPopulationBasics(t *testing.T) {
	cfg := baseSpawnConfig()
	grid := world.NewGrid(20, 20)
	pop, err := SpawnPopulation(cfg, grid, nil, entropy.NewSource(1))
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if len(pop) != 80 {
		t.Fatalf("population %d, want 80", len(pop))
	}

	high := 0
	seen := map[world.Coord]bool{}
	for i, a := range pop {
		if int(a.ID) != i {
			t.Errorf("agent %d has id %d", i, a.ID)
		}
		if seen[a.Position] {
			t.Errorf("cell %v double-occupied", a.Position)
		}
		seen[a.Position] = true

		switch a.Kind {
		case KindHighIntegrity:
			high++
			if a.Integrity != 1 {
				t.Errorf("high-integrity agent %d has integrity %v", a.ID, a.Integrity)
			}
		case KindRegular:
			if a.Integrity < 0.3 || a.Integrity > 0.7 {
				t.Errorf("agent %d integrity %v outside initial range", a.ID, a.Integrity)
			}
		}
		if a.Opinion < 0 || a.Opinion >= 3 {
			t.Errorf("agent %d opinion %d out of range", a.ID, a.Opinion)
		}
		if !grid.Occupied(a.Position) {
			t.Errorf("agent %d not registered on grid", a.ID)
		}
	}
	if high != 20 {
		t.Errorf("high-integrity count %d, want 20", high)
	}
}

func TestSpawnPopulationCapacityError(t *testing.T) {
	cfg := baseSpawnConfig()
	cfg.Population = 10
	grid := world.NewGrid(3, 3)
	if _, err := SpawnPopulation(cfg, grid, nil, entropy.NewSource(1)); err == nil {
		t.Fatal("expected capacity error")
	}
}

func TestSpawnPopulationSchedules(t *testing.T) {
	cfg := baseSpawnConfig()
	cfg.Scheduled = true
	cfg.WorkerProbability = 0.5

	structures := []world.Structure{
		{Category: world.CategoryHome, Center: world.Coord{X: 2, Y: 2}, HalfSize: 1},
		{Category: world.CategoryHome, Center: world.Coord{X: 8, Y: 8}, HalfSize: 1},
		{Category: world.CategoryWork, Center: world.Coord{X: 5, Y: 5}, HalfSize: 2},
		{Category: world.CategorySchool, Center: world.Coord{X: 10, Y: 3}, HalfSize: 2},
		{Category: world.CategoryLeisure, Center: world.Coord{X: 14, Y: 14}, HalfSize: 1},
	}

	grid := world.NewGrid(20, 20)
	pop, err := SpawnPopulation(cfg, grid, structures, entropy.NewSource(4))
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	workers, students := 0, 0
	for _, a := range pop {
		if structures[a.Home].Category != world.CategoryHome {
			t.Errorf("agent %d home points at %v", a.ID, structures[a.Home].Category)
		}
		if structures[a.Leisure].Category != world.CategoryLeisure {
			t.Errorf("agent %d leisure points at %v", a.ID, structures[a.Leisure].Category)
		}
		switch a.Role {
		case RoleWorker:
			workers++
			if structures[a.Work].Category != world.CategoryWork {
				t.Errorf("worker %d assigned to %v", a.ID, structures[a.Work].Category)
			}
		case RoleStudent:
			students++
			if structures[a.Work].Category != world.CategorySchool {
				t.Errorf("student %d assigned to %v", a.ID, structures[a.Work].Category)
			}
		}
	}
	if workers == 0 || students == 0 {
		t.Errorf("degenerate role split: %d workers, %d students", workers, students)
	}
}

func TestValidateAgent(t *testing.T) {
	cases := []struct {
		name  string
		agent Agent
		ok    bool
	}{
		{"valid", Agent{Integrity: 0.5, Opinion: 1}, true},
		{"integrity high", Agent{Integrity: 1.1}, false},
		{"integrity low", Agent{Integrity: -0.1}, false},
		{"opinion range", Agent{Integrity: 0.5, Opinion: 3}, false},
		{"fixed point broken", Agent{Integrity: 0.9, Kind: KindHighIntegrity}, false},
		{"fixed point holds", Agent{Integrity: 1, Kind: KindHighIntegrity}, true},
	}
	for _, c := range cases {
		err := c.agent.Validate(3, 8)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}
