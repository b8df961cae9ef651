// Package engine provides the step-synchronous simulation driver:
// per-step phase ordering (movement, friend interactions, spatial
// interactions), invariant checking, and aggregate statistics.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/agora/internal/agents"
	"github.com/talgya/agora/internal/config"
	"github.com/talgya/agora/internal/entropy"
	"github.com/talgya/agora/internal/world"
)

// State tracks the driver's lifecycle.
type State uint8

const (
	StateInitialized State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// ErrFinished is returned by Step once the configured step count has
// been reached.
var ErrFinished = errors.New("simulation finished")

// Simulation owns the full run state. All mutation happens inside
// Step; the unit of atomicity is one full step.
type Simulation struct {
	cfg        config.Config
	src        *entropy.Source
	population []*agents.Agent
	grid       *world.Grid
	index      *world.SpatialIndex
	structures []world.Structure

	state State
	step  int
	stats StepStats
}

// NewSimulation validates the configuration and builds the initial
// world: structures (scheduled variant), population, friend graph,
// spatial index. All randomness flows from one source seeded with
// cfg.Seed, drawn in a fixed order, so a seed pins the whole run.
func NewSimulation(cfg config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	src := entropy.NewSource(cfg.Seed)
	grid := world.NewGrid(cfg.Width, cfg.Height)

	var structures []world.Structure
	if cfg.Schedule.Enabled {
		structures = world.PlaceStructures(world.StructureCounts{
			Homes:      cfg.Schedule.Homes,
			Workplaces: cfg.Schedule.Workplaces,
			Schools:    cfg.Schedule.Schools,
			Leisure:    cfg.Schedule.Leisure,
		}, cfg.Width, cfg.Height, cfg.Seed, src)
	}

	population, err := agents.SpawnPopulation(agents.SpawnConfig{
		Population:            cfg.Population,
		HighIntegrityFraction: cfg.HighIntegrityFraction,
		Opinions:              cfg.Opinions,
		IntegrityMin:          cfg.IntegrityMin,
		IntegrityMax:          cfg.IntegrityMax,
		EnforceOccupancy:      cfg.EnforceOccupancy,
		Scheduled:             cfg.Schedule.Enabled,
		WorkerProbability:     cfg.Schedule.WorkerProbability,
	}, grid, structures, src)
	if err != nil {
		return nil, fmt.Errorf("spawn population: %w", err)
	}

	agents.BuildFriendGraph(population, cfg.FriendCap, src)

	sim := &Simulation{
		cfg:        cfg,
		src:        src,
		population: population,
		grid:       grid,
		index:      world.NewSpatialIndex(),
		structures: structures,
	}
	sim.index.Rebuild(sim.positions())
	sim.stats = sim.aggregate()
	return sim, nil
}

// State returns the driver's lifecycle state.
func (s *Simulation) State() State {
	return s.state
}

// CurrentStep returns the number of completed steps.
func (s *Simulation) CurrentStep() int {
	return s.step
}

// Stats returns the aggregates of the most recent completed step (or
// of the initial state before any step has run).
func (s *Simulation) Stats() StepStats {
	return s.stats
}

// Step advances the simulation by one full step: movement, spatial
// index rebuild, friend-interaction phase, spatial-interaction phase,
// invariant check, statistics. Returns ErrFinished once the configured
// step count is reached; any other error is an invariant violation and
// indicates a bug.
func (s *Simulation) Step() (StepStats, error) {
	switch s.state {
	case StateFinished:
		return s.stats, ErrFinished
	case StateInitialized:
		if s.cfg.Steps == 0 {
			s.state = StateFinished
			return s.stats, ErrFinished
		}
		s.state = StateRunning
	}

	s.step++
	s.moveAgents()
	s.index.Rebuild(s.positions())
	s.friendPhase()
	s.spatialPhase()

	if err := s.checkInvariants(); err != nil {
		// The run is corrupt; refuse further stepping.
		s.state = StateFinished
		return s.stats, fmt.Errorf("invariant violation at step %d: %w", s.step, err)
	}

	s.stats = s.aggregate()
	if s.step >= s.cfg.Steps {
		s.state = StateFinished
	}
	return s.stats, nil
}

// Run drives the simulation to completion, invoking onStep after each
// completed step. A nil onStep just runs the loop.
func (s *Simulation) Run(onStep func(stats StepStats, snap *Snapshot) error) error {
	for {
		stats, err := s.Step()
		if errors.Is(err, ErrFinished) {
			return nil
		}
		if err != nil {
			return err
		}
		if onStep != nil {
			snap := s.Snapshot()
			if err := onStep(stats, snap); err != nil {
				return err
			}
		}
		if s.state == StateFinished {
			return nil
		}
	}
}

// positions returns the id-indexed position slice for index rebuilds.
func (s *Simulation) positions() []world.Coord {
	out := make([]world.Coord, len(s.population))
	for i, a := range s.population {
		out[i] = a.Position
	}
	return out
}

// checkInvariants re-validates the step-boundary invariants. Violations
// surface immediately instead of being clamped away.
func (s *Simulation) checkInvariants() error {
	if len(s.population) != s.cfg.Population {
		return fmt.Errorf("population changed: %d != %d", len(s.population), s.cfg.Population)
	}
	for _, a := range s.population {
		if err := a.Validate(s.cfg.Opinions, s.cfg.FriendCap); err != nil {
			return err
		}
		if !s.grid.InBounds(a.Position) {
			return fmt.Errorf("agent %d: position %v out of bounds", a.ID, a.Position)
		}
	}
	return agents.ValidateFriendGraph(s.population, s.cfg.FriendCap)
}

// LogSummary emits an end-of-run report.
func (s *Simulation) LogSummary() {
	slog.Info("run complete",
		"steps", s.step,
		"state", s.state,
		"mean_integrity", fmt.Sprintf("%.4f", s.stats.MeanIntegrity),
		"opinion_counts", s.stats.OpinionCounts,
	)
}
