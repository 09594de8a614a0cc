package scheduler

import (
	"errors"
	"fmt"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// CheckInvariants reports every broken state rule between the queue and
// the fleet. A non-nil result is always a bug in the engine.
func CheckInvariants(jobs []*models.Job, workers []*models.Worker) error {
	var errs []error

	bound := make(map[string]int, len(workers))
	known := make(map[string]bool, len(workers))
	for _, worker := range workers {
		known[worker.ID] = true
	}

	for _, job := range jobs {
		switch job.Status {
		case models.JobStatusPending:
			if job.AssignedWorker != "" {
				errs = append(errs, fmt.Errorf("pending job %s is bound to %s", job.ID, job.AssignedWorker))
			}
			if job.Progress != 0 {
				errs = append(errs, fmt.Errorf("pending job %s has progress %d", job.ID, job.Progress))
			}
		case models.JobStatusInProgress:
			if job.AssignedWorker == "" {
				errs = append(errs, fmt.Errorf("in-progress job %s has no worker", job.ID))
				break
			}
			if !known[job.AssignedWorker] {
				errs = append(errs, fmt.Errorf("in-progress job %s is bound to unknown worker %s", job.ID, job.AssignedWorker))
			}
			if job.Progress < 0 || job.Progress >= models.MaxProgress {
				errs = append(errs, fmt.Errorf("in-progress job %s has progress %d", job.ID, job.Progress))
			}
			bound[job.AssignedWorker]++
		case models.JobStatusCompleted:
			if job.AssignedWorker == "" {
				errs = append(errs, fmt.Errorf("completed job %s lost its worker", job.ID))
			}
			if job.Progress != models.MaxProgress {
				errs = append(errs, fmt.Errorf("completed job %s has progress %d", job.ID, job.Progress))
			}
		default:
			errs = append(errs, fmt.Errorf("job %s has invalid status %d", job.ID, int(job.Status)))
		}
	}

	for _, worker := range workers {
		n := bound[worker.ID]
		if n > 1 {
			errs = append(errs, fmt.Errorf("worker %s holds %d in-progress jobs", worker.ID, n))
		}
		if worker.Available != (n == 0) {
			errs = append(errs, fmt.Errorf("worker %s available=%t with %d in-progress jobs", worker.ID, worker.Available, n))
		}
		if worker.CompletedCount < 0 || worker.FailureCount < 0 {
			errs = append(errs, fmt.Errorf("worker %s has negative counters", worker.ID))
		}
	}

	return errors.Join(errs...)
}
