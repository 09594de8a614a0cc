package models

import "fmt"

// JobStatus is the lifecycle state of a job.
type JobStatus int

const (
	JobStatusPending    JobStatus = iota // waiting for a capable worker
	JobStatusInProgress                  // bound to a worker and advancing
	JobStatusCompleted                   // terminal
)

func (s JobStatus) String() string {
	switch s {
	case JobStatusPending:
		return "Pending"
	case JobStatusInProgress:
		return "InProgress"
	case JobStatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the status by name.
func (s JobStatus) MarshalText() ([]byte, error) {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("invalid job status %d", int(s))
}

// UnmarshalText decodes a status name.
func (s *JobStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Pending":
		*s = JobStatusPending
	case "InProgress":
		*s = JobStatusInProgress
	case "Completed":
		*s = JobStatusCompleted
	default:
		return fmt.Errorf("invalid job status %q", string(text))
	}
	return nil
}

// Job represents a unit of capability-tagged work in the queue
type Job struct {
	ID             string    `json:"id"`
	Priority       int       `json:"priority"`
	Capability     string    `json:"capability"`
	AssignedWorker string    `json:"assigned_worker,omitempty"`
	Status         JobStatus `json:"status"`
	Progress       int       `json:"progress"`
	Age            int       `json:"age"`
	WaitingTime    int       `json:"waiting_time"`
}

// NewJob returns a pending job with zeroed counters.
func NewJob(id string, priority int, capability string) *Job {
	return &Job{
		ID:         id,
		Priority:   priority,
		Capability: capability,
		Status:     JobStatusPending,
	}
}

// InjectJobRequest represents the request payload for adding a job manually
type InjectJobRequest struct {
	ID         string `json:"id"`
	Priority   int    `json:"priority"`
	Capability string `json:"capability"`
}
