package scheduler

import (
	"fmt"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// ProgressStep bounds the per-cycle progress increment of an in-progress
// job. The increment is drawn uniformly from [Min, Max]; equal bounds give a
// fixed step.
type ProgressStep struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// DefaultProgressStep finishes a job in three to five cycles.
func DefaultProgressStep() ProgressStep {
	return ProgressStep{Min: models.DefaultProgressStepMin, Max: models.DefaultProgressStepMax}
}

func (p ProgressStep) validate() error {
	if p.Min < 1 {
		return invalid("progress step", "minimum %d must be at least 1", p.Min)
	}
	if p.Max < p.Min {
		return invalid("progress step", "maximum %d is below minimum %d", p.Max, p.Min)
	}
	if p.Max > models.MaxProgress {
		return invalid("progress step", "maximum %d exceeds %d", p.Max, models.MaxProgress)
	}
	return nil
}

func (p ProgressStep) draw(rng Rand) int {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + rng.IntN(p.Max-p.Min+1)
}

// ExecutionResult is the outcome of one execution pass.
type ExecutionResult struct {
	// Events holds one line per resolution, in queue order.
	Events []string
	// Completed lists jobs that resolved successfully in this pass.
	Completed []string
	// Failed lists jobs that were sent back to the queue in this pass.
	Failed []string
}

// Execute advances every in-progress job by one step. A job whose progress
// reaches 100 resolves in the same pass with a single draw against its
// worker's failure probability. Completed jobs are left untouched.
func Execute(jobs []*models.Job, workers []*models.Worker, rng Rand, step ProgressStep) ExecutionResult {
	var result ExecutionResult

	byID := make(map[string]*models.Worker, len(workers))
	for _, worker := range workers {
		byID[worker.ID] = worker
	}

	for _, job := range jobs {
		if job.Status != models.JobStatusInProgress {
			continue
		}
		worker, ok := byID[job.AssignedWorker]
		if !ok {
			continue
		}

		job.Progress += step.draw(rng)
		if job.Progress < models.MaxProgress {
			continue
		}
		job.Progress = models.MaxProgress

		if rng.Float64() >= worker.FailureProbability {
			job.Status = models.JobStatusCompleted
			worker.CompletedCount++
			worker.Available = true
			result.Completed = append(result.Completed, job.ID)
			result.Events = append(result.Events, fmt.Sprintf(
				"DONE: worker %s completed job %s", worker.ID, job.ID,
			))
			continue
		}

		job.Status = models.JobStatusPending
		job.Progress = 0
		job.WaitingTime = 0
		job.AssignedWorker = ""
		worker.FailureCount++
		worker.Available = true
		result.Failed = append(result.Failed, job.ID)
		result.Events = append(result.Events, fmt.Sprintf(
			"FAILED: worker %s failed job %s, job returned to the queue", worker.ID, job.ID,
		))
	}

	return result
}
