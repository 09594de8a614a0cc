package scheduler

import (
	"math"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// Efficiency returns the percentage of resolved attempts that succeeded,
// rounded to one decimal. With no attempts it is 100.
func Efficiency(workers []*models.Worker) float64 {
	completed, failed := totals(workers)
	attempts := completed + failed
	if attempts == 0 {
		return 100
	}
	pct := 100 * float64(completed) / float64(attempts)
	return math.Round(pct*10) / 10
}

func totals(workers []*models.Worker) (completed, failed int) {
	for _, worker := range workers {
		completed += worker.CompletedCount
		failed += worker.FailureCount
	}
	return completed, failed
}

// FleetStats summarizes the fleet and the queue.
type FleetStats struct {
	Workers          int     `json:"workers"`
	AvailableWorkers int     `json:"available_workers"`
	BusyWorkers      int     `json:"busy_workers"`
	Completed        int     `json:"completed_attempts"`
	Failed           int     `json:"failed_attempts"`
	TotalJobs        int     `json:"total_jobs"`
	PendingJobs      int     `json:"pending_jobs"`
	InProgressJobs   int     `json:"in_progress_jobs"`
	CompletedJobs    int     `json:"completed_jobs"`
	Efficiency       float64 `json:"efficiency"`
}

func computeStats(wm *WorkerManager, jm *JobManager) FleetStats {
	workers := wm.Workers()
	completed, failed := totals(workers)
	available := wm.GetAvailableWorkerCount()
	counts := jm.CountByStatus()
	return FleetStats{
		Workers:          len(workers),
		AvailableWorkers: available,
		BusyWorkers:      len(workers) - available,
		Completed:        completed,
		Failed:           failed,
		TotalJobs:        jm.Len(),
		PendingJobs:      counts[models.JobStatusPending],
		InProgressJobs:   counts[models.JobStatusInProgress],
		CompletedJobs:    counts[models.JobStatusCompleted],
		Efficiency:       Efficiency(workers),
	}
}
