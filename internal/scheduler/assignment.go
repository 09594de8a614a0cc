package scheduler

import (
	"fmt"
	"sort"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// AssignmentResult is the outcome of one assignment pass.
type AssignmentResult struct {
	// Events holds one line per assignment, in assignment order.
	Events []string
	// Assigned maps job id to the worker it was bound to.
	Assigned map[string]string
	// Starved lists pending jobs no available worker could take, in the
	// order they were considered.
	Starved []string
}

// Assign binds pending jobs to available, capable workers. Jobs are taken by
// descending priority, then by descending waiting time so long-waiting jobs
// are not starved by newer ones of equal priority; remaining ties keep queue
// order. Each job gets the eligible worker with the lowest failure
// probability, ties broken by worker id.
func Assign(jobs []*models.Job, workers []*models.Worker) AssignmentResult {
	result := AssignmentResult{Assigned: make(map[string]string)}

	pending := make([]*models.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == models.JobStatusPending {
			pending = append(pending, job)
		}
	}
	if len(pending) == 0 {
		return result
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		return pending[i].WaitingTime > pending[j].WaitingTime
	})

	candidates := make([]*models.Worker, 0, len(workers))
	for _, worker := range workers {
		if worker.Available {
			candidates = append(candidates, worker)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].FailureProbability != candidates[j].FailureProbability {
			return candidates[i].FailureProbability < candidates[j].FailureProbability
		}
		return candidates[i].ID < candidates[j].ID
	})

	for _, job := range pending {
		worker := pickWorker(candidates, job.Capability)
		if worker == nil {
			result.Starved = append(result.Starved, job.ID)
			continue
		}

		job.Status = models.JobStatusInProgress
		job.AssignedWorker = worker.ID
		job.Progress = 0
		worker.Available = false

		result.Assigned[job.ID] = worker.ID
		result.Events = append(result.Events, fmt.Sprintf(
			"ASSIGNED: job %s (%s, priority %d) -> worker %s",
			job.ID, job.Capability, job.Priority, worker.ID,
		))
	}

	return result
}

// pickWorker returns the first still-available candidate with the
// capability. candidates must already be in preference order.
func pickWorker(candidates []*models.Worker, capability string) *models.Worker {
	for _, worker := range candidates {
		if worker.Available && worker.Capabilities.Has(capability) {
			return worker
		}
	}
	return nil
}
