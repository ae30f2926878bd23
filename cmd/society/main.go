// Command society runs the corruption dynamics simulation and writes the
// per-step trace to stdout.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/talgya/mini-society/internal/config"
	"github.com/talgya/mini-society/internal/engine"
	"github.com/talgya/mini-society/internal/entropy"
	"github.com/talgya/mini-society/internal/persistence"
	"github.com/talgya/mini-society/internal/trace"
)

func main() {
	def := config.Default()
	var (
		configPath = flag.String("config", "", "path to a YAML config file (flags override it)")
		dbPath     = flag.String("db", "", "SQLite file to store the trace in (optional)")
		debug      = flag.Bool("debug", false, "log reproduction cycles")

		popSize      = flag.Int("pop", def.PopSize, "initial population size")
		criminalFrac = flag.Float64("criminal", def.CriminalFraction, "initial criminal fraction")
		policeFrac   = flag.Float64("police", def.PoliceFraction, "initial police fraction")
		reproStep    = flag.Int("reproduce-every", def.ReproductionStep, "steps between reproduction cycles")
		criminalFine = flag.Float64("criminal-fine", def.CriminalFine, "fine paid by a criminal who does not bribe")
		policeReward = flag.Float64("police-reward", def.PoliceReward, "reward earned by the officer")
		bribeFine    = flag.Float64("bribe-fine", def.BribeFine, "fine paid by a briber")
		growth       = flag.Float64("growth", def.GrowthRate, "population size multiplier per reproduction cycle")
		steps        = flag.Int("steps", def.Steps, "number of steps to run")
		seed         = flag.Int64("seed", 0, "random seed (0 = draw one)")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// ── Configuration ─────────────────────────────────────────────────
	cfg := def
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath, def)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		slog.Info("config loaded", "path", *configPath)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pop":
			cfg.PopSize = *popSize
		case "criminal":
			cfg.CriminalFraction = *criminalFrac
		case "police":
			cfg.PoliceFraction = *policeFrac
		case "reproduce-every":
			cfg.ReproductionStep = *reproStep
		case "criminal-fine":
			cfg.CriminalFine = *criminalFine
		case "police-reward":
			cfg.PoliceReward = *policeReward
		case "bribe-fine":
			cfg.BribeFine = *bribeFine
		case "growth":
			cfg.GrowthRate = *growth
		case "steps":
			cfg.Steps = *steps
		case "seed":
			cfg.Seed = *seed
		}
	})

	if cfg.Seed == 0 {
		cfg.Seed = entropy.Seed(context.Background(), entropy.NewClient(os.Getenv("RANDOM_ORG_API_KEY")))
		slog.Info("seed drawn", "seed", cfg.Seed)
	}

	// ── Recorders ─────────────────────────────────────────────────────
	recorders := trace.Multi{trace.NewWriter(os.Stdout)}

	var db *persistence.DB
	if *dbPath != "" {
		var err error
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", *dbPath)

		if _, err := db.BeginRun(cfg.Seed, cfg); err != nil {
			slog.Error("failed to register run", "error", err)
			os.Exit(1)
		}
		recorders = append(recorders, db)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim, err := engine.NewSimulation(cfg, recorders)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Extinction exits the process from inside the run; close the stored
	// run first so it is not left marked as running.
	sim.Exit = func(code int) {
		if db != nil {
			if err := db.FinishRun(persistence.StatusExtinct, sim.CurrentStep()); err != nil {
				slog.Error("failed to close run", "error", err)
			}
			db.Close()
		}
		os.Exit(code)
	}

	if err := sim.Run(); err != nil {
		slog.Error("simulation failed", "error", err)
		if db != nil {
			db.FinishRun(persistence.StatusFailed, sim.CurrentStep())
			db.Close()
		}
		os.Exit(1)
	}

	if db != nil {
		if err := db.FinishRun(persistence.StatusCompleted, sim.CurrentStep()); err != nil {
			slog.Error("failed to close run", "error", err)
		}
	}
}
