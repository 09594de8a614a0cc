package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/client"
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
		schedulerURL = flag.String("scheduler", cfg.SchedulerURL, "Scheduler URL")
		interval     = flag.Duration("interval", cfg.StepInterval, "Time between cycles")
		maxCycles    = flag.Int("cycles", 0, "Stop after this many cycles (0 runs until interrupted)")
		logLevel     = flag.String("log-level", cfg.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
	)

	flag.Parse()

	if *interval <= 0 {
		fmt.Println("Error: interval must be positive")
		flag.PrintDefaults()
		os.Exit(1)
	}

	utils.SetDefaultLogLevel(utils.ParseLogLevel(*logLevel))
	logger := utils.Default().WithComponent("stepper")

	logger.Info("Scheduler URL: %s", *schedulerURL)
	logger.Info("Step interval: %v", *interval)

	s := client.NewStepper(client.StepperConfig{
		SchedulerURL: *schedulerURL,
		Interval:     *interval,
		MaxCycles:    *maxCycles,
	}, logger)

	if err := s.Run(); err != nil {
		logger.Fatal("Stepper failed: %v", err)
	}
}
