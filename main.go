package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/game"
	"github.com/pthm-cable/biosim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite archive path (empty = off)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = use config, or time-based if config seed is 0)")
	years := flag.Int("years", 0, "Years to simulate (0 = use config)")
	resume := flag.String("resume", "", "Snapshot file to resume from")
	verbose := flag.Bool("v", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = uint64(time.Now().UnixNano())
	}
	if *years > 0 {
		cfg.Simulation.Years = *years
	}
	if *logStats {
		cfg.Telemetry.LogStats = true
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *dbPath != "" {
		cfg.Output.DB = *dbPath
	}
	if *snapshotDir != "" {
		cfg.Output.SnapshotDir = *snapshotDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *resume); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, resume string) error {
	opts := game.OptionsFromConfig(cfg)

	var (
		sim *game.Simulation
		err error
	)
	if resume != "" {
		snap, lerr := telemetry.LoadSnapshot(resume)
		if lerr != nil {
			return lerr
		}
		sim, err = game.Restore(snap, opts)
	} else {
		sim, err = game.NewFromConfig(cfg, opts)
	}
	if err != nil {
		return err
	}
	defer sim.Close()

	slog.Info("starting simulation",
		"seed", sim.Seed(),
		"start_year", sim.Year(),
		"years", cfg.Simulation.Years,
	)
	start := time.Now()

	simErr := sim.Simulate(ctx, cfg.Simulation.Years)

	herb, carn, total := sim.PopulationCounts()
	slog.Info("simulation finished",
		"year", sim.Year(),
		"herbivores", herb,
		"carnivores", carn,
		"total", total,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	sim.LogWorldState()

	if cfg.Output.SnapshotDir != "" {
		path, err := sim.SaveSnapshot()
		if err != nil {
			slog.Error("failed to save final snapshot", "error", err)
		} else {
			slog.Info("final snapshot saved", "path", path)
		}
	}
	if errors.Is(simErr, context.Canceled) {
		return nil
	}
	return simErr
}
