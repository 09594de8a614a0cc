package scheduler

import (
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// JobManager is the work queue. Jobs keep their insertion order, which is
// the order execution processes them in.
type JobManager struct {
	jobs  []*models.Job
	index map[string]*models.Job
}

// NewJobManager creates an empty queue
func NewJobManager() *JobManager {
	return &JobManager{
		index: make(map[string]*models.Job),
	}
}

// EnqueueJob validates and appends a new pending job
func (jm *JobManager) EnqueueJob(id string, priority int, capability string) (*models.Job, error) {
	if id == "" {
		return nil, invalid("job id", "must not be empty")
	}
	if _, exists := jm.index[id]; exists {
		return nil, invalid("job id", "job %q already exists", id)
	}
	if priority <= 0 {
		return nil, invalid("priority", "%d is not positive", priority)
	}
	if capability == "" {
		return nil, invalid("capability", "must not be empty")
	}

	job := models.NewJob(id, priority, capability)
	jm.jobs = append(jm.jobs, job)
	jm.index[id] = job
	return job, nil
}

// Has reports whether a job id is taken
func (jm *JobManager) Has(id string) bool {
	_, exists := jm.index[id]
	return exists
}

// GetJob returns a specific job or nil
func (jm *JobManager) GetJob(id string) *models.Job {
	return jm.index[id]
}

// Jobs returns the queue in insertion order
func (jm *JobManager) Jobs() []*models.Job {
	out := make([]*models.Job, len(jm.jobs))
	copy(out, jm.jobs)
	return out
}

// Len returns the number of jobs in the queue, completed ones included
func (jm *JobManager) Len() int {
	return len(jm.jobs)
}

// GetInProgressJobByWorker returns the job currently bound to a worker
func (jm *JobManager) GetInProgressJobByWorker(workerID string) *models.Job {
	for _, job := range jm.jobs {
		if job.Status == models.JobStatusInProgress && job.AssignedWorker == workerID {
			return job
		}
	}
	return nil
}

// RequeueJob puts an in-progress job back to pending without touching its
// waiting time or age.
func (jm *JobManager) RequeueJob(job *models.Job) {
	job.Status = models.JobStatusPending
	job.AssignedWorker = ""
	job.Progress = 0
}

// AgeJobs advances the per-cycle counters of every unfinished job
func (jm *JobManager) AgeJobs() {
	for _, job := range jm.jobs {
		switch job.Status {
		case models.JobStatusPending:
			job.Age++
			job.WaitingTime++
		case models.JobStatusInProgress:
			job.Age++
		}
	}
}

// ClearCompleted removes every completed job and returns how many went
func (jm *JobManager) ClearCompleted() int {
	kept := jm.jobs[:0]
	removed := 0
	for _, job := range jm.jobs {
		if job.Status == models.JobStatusCompleted {
			delete(jm.index, job.ID)
			removed++
			continue
		}
		kept = append(kept, job)
	}
	for i := len(kept); i < len(jm.jobs); i++ {
		jm.jobs[i] = nil
	}
	jm.jobs = kept
	return removed
}

// CountByStatus returns how many jobs sit in each state
func (jm *JobManager) CountByStatus() map[models.JobStatus]int {
	counts := map[models.JobStatus]int{
		models.JobStatusPending:    0,
		models.JobStatusInProgress: 0,
		models.JobStatusCompleted:  0,
	}
	for _, job := range jm.jobs {
		counts[job.Status]++
	}
	return counts
}
