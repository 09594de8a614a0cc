package client

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sharma-sourabh3435/fleet-scheduler/pkg/utils"
)

// StepperConfig holds stepper configuration
type StepperConfig struct {
	SchedulerURL string
	Interval     time.Duration
	// MaxCycles stops the stepper after that many cycles; 0 runs until stopped.
	MaxCycles int
}

// Stepper drives a remote simulation by requesting one cycle per tick
type Stepper struct {
	client   *Client
	interval time.Duration
	max      int
	logger   *utils.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu     sync.Mutex
	cycles int
	done   chan struct{}
}

// NewStepper creates a new stepper instance
func NewStepper(config StepperConfig, logger *utils.Logger) *Stepper {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = utils.NewLogger("stepper", utils.INFO)
	}

	return &Stepper{
		client:   New(config.SchedulerURL),
		interval: config.Interval,
		max:      config.MaxCycles,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start checks the scheduler is reachable and begins stepping in the background
func (s *Stepper) Start() error {
	state, err := s.client.State(s.ctx)
	if err != nil {
		return err
	}
	s.logger.Info("Connected to run %s at cycle %d with %d workers", state.RunID, state.Cycle, len(state.Workers))

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Run starts the stepper and blocks until a shutdown signal arrives or the
// cycle limit is reached.
func (s *Stepper) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		s.logger.Info("Received shutdown signal")
	case <-s.done:
		s.logger.Info("Reached %d cycles", s.max)
	}

	s.Stop()
	return nil
}

// Stop stops the stepper gracefully
func (s *Stepper) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("Stepper stopped after %d cycles", s.Cycles())
}

// Done is closed once the cycle limit is reached
func (s *Stepper) Done() <-chan struct{} {
	return s.done
}

// Cycles returns how many cycles this stepper has run
func (s *Stepper) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

func (s *Stepper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("Stepper loop stopped")
			return
		case <-ticker.C:
			if s.step() {
				close(s.done)
				return
			}
		}
	}
}

// step runs one remote cycle and reports whether the limit was reached
func (s *Stepper) step() bool {
	result, err := s.client.RunCycle(s.ctx)
	if err != nil {
		if s.ctx.Err() == nil {
			s.logger.Error("Failed to run cycle: %v", err)
		}
		return false
	}

	for _, event := range result.Events {
		s.logger.Info("[cycle %d] %s", result.Cycle, event)
	}
	s.logger.Info("Cycle %d done, efficiency %.1f%%", result.Cycle, result.Efficiency)

	s.mu.Lock()
	s.cycles++
	reached := s.max > 0 && s.cycles >= s.max
	s.mu.Unlock()
	return reached
}
