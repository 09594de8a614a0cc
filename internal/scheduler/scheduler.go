package scheduler

import (
	"fmt"
	"sync"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
	"github.com/sharma-sourabh3435/fleet-scheduler/pkg/utils"
)

// maxSpawnAttempts bounds how many ids a spawn draws before giving up on a
// crowded id space.
const maxSpawnAttempts = 10

// Config holds the simulation parameters of an Engine
type Config struct {
	Seed             uint64
	SpawnProbability float64
	MaxSpawnPriority int
	ProgressStep     ProgressStep
	Capabilities     []string
	Fleet            []models.WorkerSpec
}

// DefaultConfig returns the parameters of a fresh simulation
func DefaultConfig() Config {
	caps := make([]string, len(models.DefaultCapabilities))
	copy(caps, models.DefaultCapabilities)
	return Config{
		Seed:             models.DefaultSeed,
		SpawnProbability: models.DefaultSpawnProbability,
		MaxSpawnPriority: models.DefaultMaxSpawnPriority,
		ProgressStep:     DefaultProgressStep(),
		Capabilities:     caps,
		Fleet:            models.DefaultFleet(),
	}
}

// ConfigFromSimulation converts the loaded fleet settings
func ConfigFromSimulation(sim utils.SimulationConfig) Config {
	return Config{
		Seed:             sim.Seed,
		SpawnProbability: sim.SpawnProbability,
		MaxSpawnPriority: sim.MaxSpawnPriority,
		ProgressStep:     ProgressStep{Min: sim.ProgressStep.Min, Max: sim.ProgressStep.Max},
		Capabilities:     sim.Capabilities,
		Fleet:            sim.Workers,
	}
}

func (c Config) validate() error {
	if c.SpawnProbability < 0 || c.SpawnProbability > 1 {
		return invalid("spawn probability", "%v is outside [0,1]", c.SpawnProbability)
	}
	if c.SpawnProbability > 0 {
		if c.MaxSpawnPriority < 1 {
			return invalid("max spawn priority", "%d is not positive", c.MaxSpawnPriority)
		}
		if len(c.Capabilities) == 0 {
			return invalid("capabilities", "spawning needs at least one capability")
		}
	}
	return c.ProgressStep.validate()
}

// Option customizes an Engine
type Option func(*Engine)

// WithRand replaces the seeded source. The same source is kept across Reset.
func WithRand(rng Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.newRand = func() Rand { return rng }
		}
	}
}

// WithLogger sets the logger the engine reports through
func WithLogger(logger *utils.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Snapshot is a copy of the engine state, safe to read after the call.
type Snapshot struct {
	Cycle      int             `json:"cycle"`
	Workers    []models.Worker `json:"workers"`
	Jobs       []models.Job    `json:"jobs"`
	Efficiency float64         `json:"efficiency"`
	Stats      FleetStats      `json:"stats"`
}

// Engine owns the fleet and the queue and advances them one cycle at a
// time. All methods are safe for concurrent use; each holds the engine lock
// for its whole duration, so cycles never overlap.
type Engine struct {
	mu            sync.Mutex
	config        Config
	workerManager *WorkerManager
	jobManager    *JobManager
	rng           Rand
	newRand       func() Rand
	logger        *utils.Logger
	cycle         int
}

// NewEngine creates an engine seeded with the configured fleet
func NewEngine(config Config, opts ...Option) (*Engine, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config: config,
		logger: utils.NewLogger("engine", utils.INFO),
	}
	e.newRand = func() Rand { return NewRand(config.Seed) }
	for _, opt := range opts {
		opt(e)
	}

	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

// init builds the starting state. Must be called with e.mu held or before
// the engine is shared.
func (e *Engine) init() error {
	e.workerManager = NewWorkerManager()
	e.jobManager = NewJobManager()
	e.rng = e.newRand()
	e.cycle = 0

	for _, spec := range e.config.Fleet {
		if _, err := e.workerManager.RegisterWorker(spec.ID, spec.Capabilities, spec.FailureProbability); err != nil {
			return fmt.Errorf("seed fleet: %w", err)
		}
	}
	e.logger.Info("Engine initialized with %d workers", e.workerManager.GetWorkerCount())
	return nil
}

// CreateWorker adds an available worker with zero counters
func (e *Engine) CreateWorker(id string, capabilities []string, failureProbability float64) (models.Worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	worker, err := e.workerManager.RegisterWorker(id, capabilities, failureProbability)
	if err != nil {
		return models.Worker{}, err
	}
	e.logger.Info("Registered worker %s (capabilities %v, failure probability %.2f)",
		worker.ID, worker.Capabilities.Slice(), worker.FailureProbability)
	return worker.Clone(), nil
}

// RemoveWorker decommissions a worker. A job it was working on goes back to
// the queue with its progress reset; a copy of that job is returned.
func (e *Engine) RemoveWorker(id string) (*models.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.workerManager.RemoveWorker(id); err != nil {
		return nil, err
	}
	e.logger.Info("Removed worker %s", id)

	job := e.jobManager.GetInProgressJobByWorker(id)
	if job == nil {
		return nil, nil
	}
	e.jobManager.RequeueJob(job)
	e.logger.Warn("Released job %s from removed worker %s", job.ID, id)
	released := *job
	return &released, nil
}

// InjectJob adds a pending job to the queue
func (e *Engine) InjectJob(id string, priority int, capability string) (models.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	job, err := e.jobManager.EnqueueJob(id, priority, capability)
	if err != nil {
		return models.Job{}, err
	}
	e.logger.Info("Injected job %s (%s, priority %d)", job.ID, job.Capability, job.Priority)
	return *job, nil
}

// ClearCompletedJobs removes finished jobs from the queue
func (e *Engine) ClearCompletedJobs() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.jobManager.ClearCompleted()
	e.logger.Info("Cleared %d completed jobs", removed)
	return removed
}

// RunCycle advances the simulation by one step and returns its event log:
// an optional spawn, assignment, aging, execution, then one celebration
// line per job completed during this cycle.
func (e *Engine) RunCycle() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runCycle()
}

// StepResult describes one cycle together with the state it left behind.
type StepResult struct {
	Cycle      int      `json:"cycle"`
	Events     []string `json:"events"`
	Efficiency float64  `json:"efficiency"`
}

// Step runs one cycle and reports its number and the resulting efficiency
// atomically with respect to other callers.
func (e *Engine) Step() StepResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	events := e.runCycle()
	if events == nil {
		events = []string{}
	}
	return StepResult{
		Cycle:      e.cycle,
		Events:     events,
		Efficiency: Efficiency(e.workerManager.Workers()),
	}
}

// runCycle must be called with e.mu held.
func (e *Engine) runCycle() []string {
	var events []string

	alreadyCompleted := make(map[string]bool)
	for _, job := range e.jobManager.Jobs() {
		if job.Status == models.JobStatusCompleted {
			alreadyCompleted[job.ID] = true
		}
	}

	if job := e.maybeSpawn(); job != nil {
		events = append(events, fmt.Sprintf("NEW JOB: %s (%s, priority %d) entered the queue",
			job.ID, job.Capability, job.Priority))
	}

	assignment := Assign(e.jobManager.Jobs(), e.workerManager.Workers())
	events = append(events, assignment.Events...)
	for _, id := range assignment.Starved {
		e.logger.Debug("No eligible worker for job %s", id)
	}

	e.jobManager.AgeJobs()

	execution := Execute(e.jobManager.Jobs(), e.workerManager.Workers(), e.rng, e.config.ProgressStep)
	events = append(events, execution.Events...)

	for _, id := range execution.Completed {
		if alreadyCompleted[id] {
			continue
		}
		job := e.jobManager.GetJob(id)
		events = append(events, fmt.Sprintf("SUCCESS: %s finished job %s!", job.AssignedWorker, job.ID))
	}

	e.cycle++
	e.logger.Debug("Cycle %d: %d assigned, %d completed, %d failed, %d starved",
		e.cycle, len(assignment.Assigned), len(execution.Completed), len(execution.Failed), len(assignment.Starved))
	return events
}

// maybeSpawn adds a random pending job with the configured probability.
// Must be called with e.mu held.
func (e *Engine) maybeSpawn() *models.Job {
	if e.config.SpawnProbability <= 0 || e.rng.Float64() >= e.config.SpawnProbability {
		return nil
	}

	priority := 1 + e.rng.IntN(e.config.MaxSpawnPriority)
	capability := e.config.Capabilities[e.rng.IntN(len(e.config.Capabilities))]

	for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
		id := fmt.Sprintf("T-%d", 1000+e.rng.IntN(9000))
		if e.jobManager.Has(id) {
			continue
		}
		job, err := e.jobManager.EnqueueJob(id, priority, capability)
		if err != nil {
			e.logger.Error("Failed to spawn job %s: %v", id, err)
			return nil
		}
		return job
	}

	e.logger.Warn("Skipped spawn after %d id collisions", maxSpawnAttempts)
	return nil
}

// Efficiency returns the fleet success rate in percent
func (e *Engine) Efficiency() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Efficiency(e.workerManager.Workers())
}

// Reset restores the configured starting state and re-seeds randomness
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	// The fleet was validated by NewEngine, so seeding cannot fail here.
	if err := e.init(); err != nil {
		e.logger.Error("Reset failed: %v", err)
	}
}

// Cycle returns how many cycles have run since start or the last reset
func (e *Engine) Cycle() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycle
}

// Stats returns current fleet and queue statistics
func (e *Engine) Stats() FleetStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return computeStats(e.workerManager, e.jobManager)
}

// Worker returns a copy of a worker
func (e *Engine) Worker(id string) (models.Worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	worker := e.workerManager.GetWorker(id)
	if worker == nil {
		return models.Worker{}, &NotFoundError{Kind: "worker", ID: id}
	}
	return worker.Clone(), nil
}

// Job returns a copy of a job
func (e *Engine) Job(id string) (models.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	job := e.jobManager.GetJob(id)
	if job == nil {
		return models.Job{}, &NotFoundError{Kind: "job", ID: id}
	}
	return *job, nil
}

// Snapshot copies the whole engine state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	workers := e.workerManager.Workers()
	jobs := e.jobManager.Jobs()
	snap := Snapshot{
		Cycle:   e.cycle,
		Workers: make([]models.Worker, 0, len(workers)),
		Jobs:    make([]models.Job, 0, len(jobs)),
		Stats:   computeStats(e.workerManager, e.jobManager),
	}
	for _, worker := range workers {
		snap.Workers = append(snap.Workers, worker.Clone())
	}
	for _, job := range jobs {
		snap.Jobs = append(snap.Jobs, *job)
	}
	snap.Efficiency = snap.Stats.Efficiency
	return snap
}

// Verify checks the engine state rules; intended for tests and debugging
func (e *Engine) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CheckInvariants(e.jobManager.Jobs(), e.workerManager.Workers())
}
