package scheduler

import (
	"strings"
	"testing"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

func TestAssignOrdersByPriorityThenWaitingTime(t *testing.T) {
	low := models.NewJob("low", 1, "X")
	highNew := models.NewJob("high-new", 5, "X")
	highOld := models.NewJob("high-old", 5, "X")
	highOld.WaitingTime = 3
	workers := []*models.Worker{worker("w1", 0.1, "X"), worker("w2", 0.2, "X")}

	result := Assign([]*models.Job{low, highNew, highOld}, workers)

	if len(result.Events) != 2 {
		t.Fatalf("Expected 2 assignments, got %d: %v", len(result.Events), result.Events)
	}
	if result.Assigned["high-old"] != "w1" {
		t.Errorf("Expected longest-waiting top job on the most reliable worker, got %q", result.Assigned["high-old"])
	}
	if result.Assigned["high-new"] != "w2" {
		t.Errorf("Expected high-new on w2, got %q", result.Assigned["high-new"])
	}
	if !strings.Contains(result.Events[0], "high-old") || !strings.Contains(result.Events[1], "high-new") {
		t.Errorf("Events not in assignment order: %v", result.Events)
	}
	if low.Status != models.JobStatusPending || low.AssignedWorker != "" {
		t.Errorf("Expected low job to stay pending, got %+v", low)
	}
	if len(result.Starved) != 1 || result.Starved[0] != "low" {
		t.Errorf("Expected low to be reported starved, got %v", result.Starved)
	}
}

func TestAssignPicksLowestFailureProbabilityThenID(t *testing.T) {
	job := models.NewJob("j", 1, "X")
	workers := []*models.Worker{
		worker("zeta", 0.1, "X"),
		worker("alpha", 0.1, "X"),
		worker("best-but-wrong-skill", 0.0, "Y"),
		worker("busy", 0.0, "X"),
	}
	workers[3].Available = false

	result := Assign([]*models.Job{job}, workers)

	if result.Assigned["j"] != "alpha" {
		t.Fatalf("Expected alpha, got %q", result.Assigned["j"])
	}
	if job.Status != models.JobStatusInProgress || job.AssignedWorker != "alpha" || job.Progress != 0 {
		t.Errorf("Unexpected job state %+v", job)
	}
	if workers[1].Available {
		t.Error("Expected alpha to be unavailable")
	}
	if !workers[0].Available {
		t.Error("Expected zeta to stay available")
	}
}

func TestAssignNeverDoubleBooks(t *testing.T) {
	jobs := []*models.Job{
		models.NewJob("a", 3, "X"),
		models.NewJob("b", 2, "X"),
		models.NewJob("c", 1, "X"),
	}
	workers := []*models.Worker{worker("w1", 0, "X"), worker("w2", 0, "X")}

	result := Assign(jobs, workers)

	seen := map[string]string{}
	for jobID, workerID := range result.Assigned {
		if other, dup := seen[workerID]; dup {
			t.Fatalf("Worker %s assigned to %s and %s", workerID, other, jobID)
		}
		seen[workerID] = jobID
	}
	if len(result.Assigned) != 2 {
		t.Errorf("Expected 2 assignments, got %d", len(result.Assigned))
	}
	if err := CheckInvariants(jobs, workers); err != nil {
		t.Errorf("Invariant violated: %v", err)
	}
}

func TestAssignIgnoresNonPendingJobs(t *testing.T) {
	done := models.NewJob("done", 9, "X")
	done.Status = models.JobStatusCompleted
	done.AssignedWorker = "old"
	done.Progress = models.MaxProgress

	result := Assign([]*models.Job{done}, []*models.Worker{worker("w", 0, "X")})

	if len(result.Assigned) != 0 || done.AssignedWorker != "old" {
		t.Errorf("Completed job must not be reassigned: %+v", done)
	}
}
