package scheduler

import (
	"math"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// WorkerManager is the worker registry. It keeps registration order so
// listings are stable. It is not safe for concurrent use; the Engine
// serializes access.
type WorkerManager struct {
	workers map[string]*models.Worker
	order   []string
}

// NewWorkerManager creates an empty registry
func NewWorkerManager() *WorkerManager {
	return &WorkerManager{
		workers: make(map[string]*models.Worker),
	}
}

// RegisterWorker validates and adds a new, available worker with zero counters
func (wm *WorkerManager) RegisterWorker(id string, capabilities []string, failureProbability float64) (*models.Worker, error) {
	if id == "" {
		return nil, invalid("worker id", "must not be empty")
	}
	if _, exists := wm.workers[id]; exists {
		return nil, invalid("worker id", "worker %q already exists", id)
	}
	if math.IsNaN(failureProbability) || failureProbability < 0 || failureProbability > 1 {
		return nil, invalid("failure probability", "%v is outside [0,1]", failureProbability)
	}

	caps := models.NewCapabilitySet(capabilities...)
	if len(caps) == 0 {
		return nil, invalid("capabilities", "must not be empty")
	}

	worker := &models.Worker{
		ID:                 id,
		Capabilities:       caps,
		FailureProbability: failureProbability,
		Available:          true,
	}
	wm.workers[id] = worker
	wm.order = append(wm.order, id)
	return worker, nil
}

// RemoveWorker drops a worker from the registry and returns it
func (wm *WorkerManager) RemoveWorker(id string) (*models.Worker, error) {
	worker, exists := wm.workers[id]
	if !exists {
		return nil, &NotFoundError{Kind: "worker", ID: id}
	}
	delete(wm.workers, id)
	for i, wid := range wm.order {
		if wid == id {
			wm.order = append(wm.order[:i], wm.order[i+1:]...)
			break
		}
	}
	return worker, nil
}

// GetWorker returns a specific worker or nil
func (wm *WorkerManager) GetWorker(id string) *models.Worker {
	return wm.workers[id]
}

// Workers returns all workers in registration order
func (wm *WorkerManager) Workers() []*models.Worker {
	out := make([]*models.Worker, 0, len(wm.order))
	for _, id := range wm.order {
		out = append(out, wm.workers[id])
	}
	return out
}

// GetWorkerCount returns the total number of workers
func (wm *WorkerManager) GetWorkerCount() int {
	return len(wm.workers)
}

// GetAvailableWorkerCount returns the number of idle workers
func (wm *WorkerManager) GetAvailableWorkerCount() int {
	count := 0
	for _, worker := range wm.workers {
		if worker.Available {
			count++
		}
	}
	return count
}
