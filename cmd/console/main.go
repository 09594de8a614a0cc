package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/console"
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/scheduler"
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/storage"
	"github.com/sharma-sourabh3435/fleet-scheduler/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		dbPath   = flag.String("db", "", "Database file path for cycle history (empty disables it)")
		seed     = flag.Uint64("seed", cfg.Simulation.Seed, "Random seed")
		interval = flag.Duration("interval", cfg.StepInterval, "Delay between cycles in autoplay")
		logFile  = flag.String("log-file", cfg.LogFile, "Write logs to this file (default: discard)")
		logLevel = flag.String("log-level", cfg.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
	)

	flag.Parse()

	// Log lines would corrupt the alternate screen.
	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	utils.SetDefaultOutput(out)
	utils.SetDefaultLogLevel(utils.ParseLogLevel(*logLevel))
	logger := utils.Default()

	var store storage.Storage
	if *dbPath != "" {
		sqlite, err := storage.NewSQLiteStorage(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize storage: %v\n", err)
			os.Exit(1)
		}
		defer sqlite.Close()
		store = sqlite
	}

	cfg.Simulation.Seed = *seed
	engine, err := scheduler.NewEngine(
		scheduler.ConfigFromSimulation(cfg.Simulation),
		scheduler.WithLogger(logger.WithComponent("engine")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := console.New(engine, store, console.Config{AutoInterval: *interval}, logger.WithComponent("console"))
	if err := console.Run(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
