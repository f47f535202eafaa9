package taskloop

import "time"

// JobInfo describes one registered recurring job.
type JobInfo struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Runs      int64     `json:"runs"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Snapshot is a point-in-time view of the loop for introspection
// endpoints and logs.
type Snapshot struct {
	State    State     `json:"state"`
	QueueLen int       `json:"queue_len"`
	Jobs     []JobInfo `json:"jobs"`
}

// Snapshot reports the loop's current state, queue depth and per-job
// run statistics. Jobs appear in registration order.
func (l *TaskLoop) Snapshot() Snapshot {
	l.mu.Lock()
	state := l.state
	jobs := make([]*RecurringJob, len(l.order))
	copy(jobs, l.order)
	l.mu.Unlock()

	snap := Snapshot{
		State:    state,
		QueueLen: l.queue.Len(),
		Jobs:     make([]JobInfo, 0, len(jobs)),
	}
	for _, job := range jobs {
		runs, lastRun, lastError := job.stats()
		snap.Jobs = append(snap.Jobs, JobInfo{
			Name:      job.Name(),
			Schedule:  job.Spec(),
			Runs:      runs,
			LastRun:   lastRun,
			LastError: lastError,
		})
	}
	return snap
}
