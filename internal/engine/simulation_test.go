package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/talgya/agora/internal/agents"
	"github.com/talgya/agora/internal/config"
	"github.com/talgya/agora/internal/world"
)

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Width = 15
	cfg.Height = 15
	cfg.Population = 40
	cfg.Steps = 25
	cfg.Seed = 12345
	return cfg
}

func TestStateMachine(t *testing.T) {
	sim, err := NewSimulation(smallConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sim.State() != StateInitialized {
		t.Fatalf("state = %v, want initialized", sim.State())
	}

	if _, err := sim.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if sim.State() != StateRunning {
		t.Fatalf("state = %v, want running", sim.State())
	}

	if err := sim.Run(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sim.State() != StateFinished {
		t.Fatalf("state = %v, want finished", sim.State())
	}
	if sim.CurrentStep() != 25 {
		t.Fatalf("steps completed = %d, want 25", sim.CurrentStep())
	}

	if _, err := sim.Step(); !errors.Is(err, ErrFinished) {
		t.Fatalf("step after finish: %v, want ErrFinished", err)
	}
}

func TestZeroStepsFinishesImmediately(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps = 0
	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := sim.Step(); !errors.Is(err, ErrFinished) {
		t.Fatalf("step: %v, want ErrFinished", err)
	}
	if sim.State() != StateFinished {
		t.Fatalf("state = %v, want finished", sim.State())
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := smallConfig()
	cfg.Population = 0
	if _, err := NewSimulation(cfg); err == nil {
		t.Fatal("expected config error")
	}
}

func TestInvariantViolationFinishesRun(t *testing.T) {
	sim, err := NewSimulation(smallConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// Break friend symmetry: link agent 0 to an agent of another
	// opinion that does not link back. Nothing in a step repairs
	// friend lists, so the check must trip.
	a := sim.population[0]
	var other *agents.Agent
	for _, b := range sim.population[1:] {
		if b.Opinion != a.Opinion {
			other = b
			break
		}
	}
	if other == nil {
		t.Fatal("population collapsed to a single opinion")
	}
	a.Friends = append(a.Friends, other.ID)

	if _, err := sim.Step(); err == nil || errors.Is(err, ErrFinished) {
		t.Fatalf("step on corrupted run: %v, want invariant violation", err)
	}
	if sim.State() != StateFinished {
		t.Fatalf("state = %v, want finished after a violation", sim.State())
	}
	if _, err := sim.Step(); !errors.Is(err, ErrFinished) {
		t.Fatalf("step after violation: %v, want ErrFinished", err)
	}
}

func TestDeterminismAcrossRuns(t *testing.T) {
	run := func() []*Snapshot {
		sim, err := NewSimulation(smallConfig())
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		var snaps []*Snapshot
		err = sim.Run(func(stats StepStats, snap *Snapshot) error {
			snaps = append(snaps, snap)
			return nil
		})
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return snaps
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("snapshot counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			t.Fatalf("step %d snapshots differ", a[i].Step)
		}
	}
}

func TestScheduledDeterminism(t *testing.T) {
	cfg := smallConfig()
	cfg.Schedule.Enabled = true
	cfg.Schedule.Homes = 4
	cfg.Schedule.Workplaces = 2
	cfg.Schedule.Schools = 1
	cfg.Schedule.Leisure = 2
	cfg.Steps = 10

	run := func() StepStats {
		sim, err := NewSimulation(cfg)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if err := sim.Run(nil); err != nil {
			t.Fatalf("run: %v", err)
		}
		return sim.Stats()
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Fatalf("scheduled runs diverged: %+v vs %+v", a, b)
	}
}

func TestRunInvariantsHold(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps = 40
	cfg.HighIntegrityFraction = 0.2
	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	initialOpinions := map[int]int{}
	for _, a := range sim.population {
		if a.Kind == agents.KindHighIntegrity {
			initialOpinions[int(a.ID)] = a.Opinion
		}
	}
	if len(initialOpinions) != 8 {
		t.Fatalf("high-integrity count = %d, want 8", len(initialOpinions))
	}

	err = sim.Run(func(stats StepStats, snap *Snapshot) error {
		if len(snap.Agents) != cfg.Population {
			t.Fatalf("step %d: population %d", snap.Step, len(snap.Agents))
		}
		sum := 0
		for _, n := range stats.OpinionCounts {
			sum += n
		}
		if sum != cfg.Population {
			t.Fatalf("step %d: opinion counts sum to %d", snap.Step, sum)
		}
		if stats.MeanIntegrity < 0 || stats.MeanIntegrity > 1 {
			t.Fatalf("step %d: mean integrity %v", snap.Step, stats.MeanIntegrity)
		}
		for _, a := range snap.Agents {
			if a.Integrity < 0 || a.Integrity > 1 {
				t.Fatalf("step %d: agent %d integrity %v", snap.Step, a.ID, a.Integrity)
			}
			if want, ok := initialOpinions[a.ID]; ok {
				if a.Integrity != 1 {
					t.Fatalf("step %d: high-integrity agent %d integrity %v", snap.Step, a.ID, a.Integrity)
				}
				if a.Opinion != want {
					t.Fatalf("step %d: high-integrity agent %d opinion drifted to %d", snap.Step, a.ID, a.Opinion)
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestScheduledTargetCounts(t *testing.T) {
	cfg := smallConfig()
	cfg.Schedule.Enabled = true
	cfg.Schedule.Homes = 3
	cfg.Schedule.Workplaces = 2
	cfg.Schedule.Schools = 1
	cfg.Schedule.Leisure = 2
	cfg.Steps = 5

	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = sim.Run(func(stats StepStats, snap *Snapshot) error {
		if stats.TargetCounts == nil {
			t.Fatal("scheduled run missing target counts")
		}
		sum := 0
		for _, n := range stats.TargetCounts {
			sum += n
		}
		if sum != cfg.Population {
			t.Fatalf("step %d: target counts sum to %d", stats.Step, sum)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestScheduledAggregateResolvesTargets(t *testing.T) {
	// A scheduled sim built around a fixed population must resolve
	// target-location counts against its structures from the first
	// aggregate on.
	cfg := testConfig()
	cfg.Schedule.Enabled = true
	home := world.Structure{Category: world.CategoryHome, Center: world.Coord{X: 3, Y: 3}, HalfSize: 1}
	work := world.Structure{Category: world.CategoryWork, Center: world.Coord{X: 7, Y: 7}, HalfSize: 2}
	pop := []*agents.Agent{
		{ID: 0, Position: world.Coord{X: 1, Y: 1}, Integrity: 0.5, Role: agents.RoleWorker, Work: 1},
		{ID: 1, Position: world.Coord{X: 2, Y: 2}, Integrity: 0.5, Role: agents.RoleWorker, Work: 1},
	}
	s := testSim(cfg, pop, home, work)

	stats := s.Stats()
	if len(stats.TargetCounts) != 4 {
		t.Fatalf("target counts = %v, want 4 categories", stats.TargetCounts)
	}
	if stats.TargetCounts[world.CategoryHome] != 2 {
		t.Errorf("home-phase target counts = %v, want both agents at home", stats.TargetCounts)
	}

	s.step = cfg.Schedule.Period / 2 // work third of the period
	if got := s.aggregate().TargetCounts[world.CategoryWork]; got != 2 {
		t.Errorf("work-phase target count = %d, want 2", got)
	}
}

func TestPhaseForStep(t *testing.T) {
	cases := []struct {
		step int
		want SchedulePhase
	}{
		{0, PhaseHome},
		{39, PhaseHome},
		{40, PhaseWork},
		{79, PhaseWork},
		{80, PhaseLeisure},
		{119, PhaseLeisure},
		{120, PhaseHome},
		{160, PhaseWork},
		{200, PhaseLeisure},
	}
	for _, c := range cases {
		if got := phaseForStep(c.step, 120); got != c.want {
			t.Errorf("phaseForStep(%d) = %v, want %v", c.step, got, c.want)
		}
	}
}
