// Command agorasim runs the agent-based opinion-spread simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/talgya/agora/internal/api"
	"github.com/talgya/agora/internal/config"
	"github.com/talgya/agora/internal/engine"
	"github.com/talgya/agora/internal/persistence"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (defaults apply when empty)")
	steps := flag.Int("steps", -1, "override number of steps")
	seed := flag.Int64("seed", -1, "override random seed")
	dbPath := flag.String("db", "", "override statistics database path")
	port := flag.Int("port", 0, "serve the observation API on this port")
	scheduled := flag.Bool("scheduled", false, "enable the scheduled/structured variant")
	verbose := flag.Bool("v", false, "log every step instead of every 10th")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *steps >= 0 {
		cfg.Steps = *steps
	}
	if *seed >= 0 {
		cfg.Seed = *seed
	}
	if *dbPath != "" {
		cfg.Recorder.Path = *dbPath
	}
	if *port > 0 {
		cfg.API.Enabled = true
		cfg.API.Port = *port
	}
	if *scheduled {
		cfg.Schedule.Enabled = true
	}

	sim, err := engine.NewSimulation(cfg)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	slog.Info("simulation initialized",
		"grid", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"population", cfg.Population,
		"steps", cfg.Steps,
		"seed", cfg.Seed,
		"scheduled", cfg.Schedule.Enabled,
	)

	// ── Statistics recorder ───────────────────────────────────────────
	var store *persistence.Store
	var runID string
	if cfg.Recorder.Path != "" {
		store, err = persistence.Open(cfg.Recorder.Path)
		if err != nil {
			slog.Error("failed to open statistics database", "path", cfg.Recorder.Path, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		runID, err = store.BeginRun(cfg)
		if err != nil {
			slog.Error("failed to register run", "error", err)
			os.Exit(1)
		}
		slog.Info("recording statistics", "path", cfg.Recorder.Path, "run_id", runID)
	}

	// ── Observation API ───────────────────────────────────────────────
	var server *api.Server
	if cfg.API.Enabled {
		server = &api.Server{Port: cfg.API.Port, Store: store, RunID: runID}
		server.Publish(sim.Snapshot())
		server.Start()
	}

	logEvery := 10
	if *verbose {
		logEvery = 1
	}

	err = sim.Run(func(stats engine.StepStats, snap *engine.Snapshot) error {
		if server != nil {
			server.Publish(snap)
		}
		if store != nil {
			if err := store.RecordStep(runID, stats); err != nil {
				return fmt.Errorf("record step %d: %w", stats.Step, err)
			}
		}
		if stats.Step%logEvery == 0 {
			slog.Info("step complete",
				"step", stats.Step,
				"opinion_counts", stats.OpinionCounts,
				"mean_integrity", fmt.Sprintf("%.4f", stats.MeanIntegrity),
			)
		}
		return nil
	})
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	final := sim.Stats()
	interactionsLow := int64(cfg.Population) * int64(cfg.Steps)
	slog.Info("run finished",
		"steps", sim.CurrentStep(),
		"population", humanize.Comma(int64(cfg.Population)),
		"agent_steps", humanize.Comma(interactionsLow),
		"mean_integrity", fmt.Sprintf("%.4f", final.MeanIntegrity),
		"opinion_counts", final.OpinionCounts,
	)
}
