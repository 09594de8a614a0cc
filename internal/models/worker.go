package models

// Worker represents a member of the simulated fleet
type Worker struct {
	ID                 string        `json:"id"`
	Capabilities       CapabilitySet `json:"capabilities"`
	FailureProbability float64       `json:"failure_probability"`
	Available          bool          `json:"available"`
	CompletedCount     int           `json:"completed_count"`
	FailureCount       int           `json:"failure_count"`
}

// Attempts returns the number of resolved attempts the worker has made.
func (w *Worker) Attempts() int {
	return w.CompletedCount + w.FailureCount
}

// Clone returns a deep copy safe to hand out of the engine.
func (w *Worker) Clone() Worker {
	out := *w
	out.Capabilities = w.Capabilities.Clone()
	return out
}

// CreateWorkerRequest represents the request to add a worker to the fleet
type CreateWorkerRequest struct {
	ID                 string   `json:"id"`
	Capabilities       []string `json:"capabilities"`
	FailureProbability float64  `json:"failure_probability"`
}
