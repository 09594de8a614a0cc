package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/api"
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

	// Parse command-line flags
	var (
		dbPath    = flag.String("db", cfg.DatabasePath, "Database file path (empty disables history)")
		port      = flag.Int("port", cfg.SchedulerPort, "API server port")
		host      = flag.String("host", cfg.SchedulerHost, "API server host")
		logLevel  = flag.String("log-level", cfg.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
		seed      = flag.Uint64("seed", cfg.Simulation.Seed, "Random seed")
		spawnProb = flag.Float64("spawn-probability", cfg.Simulation.SpawnProbability, "Chance of a new job per cycle")
	)

	flag.Parse()

	cfg.DatabasePath = *dbPath
	cfg.SchedulerPort = *port
	cfg.SchedulerHost = *host
	cfg.Simulation.Seed = *seed
	cfg.Simulation.SpawnProbability = *spawnProb

	utils.SetDefaultLogLevel(utils.ParseLogLevel(*logLevel))
	logger := utils.Default()

	logger.Info("Starting Fleet Scheduler")
	logger.Info("API Server: %s", cfg.GetSchedulerAddress())
	if cfg.FleetConfigPath != "" {
		logger.Info("Fleet config: %s", cfg.FleetConfigPath)
	}

	// Initialize storage
	var store storage.Storage
	if cfg.DatabasePath != "" {
		sqlite, err := storage.NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to initialize storage: %v", err)
		}
		defer sqlite.Close()
		store = sqlite
		logger.Info("Database initialized at %s", cfg.DatabasePath)
	} else {
		logger.Warn("No database path, cycle history is disabled")
	}

	// Create engine
	engine, err := scheduler.NewEngine(
		scheduler.ConfigFromSimulation(cfg.Simulation),
		scheduler.WithLogger(logger.WithComponent("engine")),
	)
	if err != nil {
		logger.Fatal("Failed to create engine: %v", err)
	}

	// Create API server
	apiServer := api.NewServer(engine, store, cfg.GetSchedulerAddress(), logger.WithComponent("api"))

	// Start API server in goroutine
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("API server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("API server shutdown error: %v", err)
	}

	logger.Info("Shutdown complete after %d cycles", engine.Cycle())
}
