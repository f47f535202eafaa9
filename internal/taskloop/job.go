package taskloop

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// specParser accepts standard five-field cron expressions plus the
// "@every" and "@hourly" style descriptors.
var specParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// RecurringJob is a named action invoked repeatedly for the life of
// the loop. Jobs are registered before the loop starts and are
// immutable afterwards; one runner goroutine is attached per job
// while the loop is running.
type RecurringJob struct {
	name     string
	interval time.Duration
	schedule cron.Schedule // non-nil for cron-spec jobs
	spec     string
	action   func(ctx context.Context) error

	initialDelay bool

	mu        sync.Mutex
	runs      int64
	lastRun   time.Time
	lastError string
}

// JobOption customizes a recurring job at registration time.
type JobOption func(*RecurringJob)

// WithInitialDelay delays the first invocation by one full schedule
// period instead of firing immediately when the loop starts. Cron-spec
// jobs always wait for their first schedule time and ignore this
// option.
func WithInitialDelay() JobOption {
	return func(j *RecurringJob) {
		j.initialDelay = true
	}
}

// Name returns the job's unique registration name.
func (j *RecurringJob) Name() string { return j.name }

// Spec describes the job's schedule: the cron expression for cron-spec
// jobs, or an "@every" form for fixed-interval jobs.
func (j *RecurringJob) Spec() string {
	if j.spec != "" {
		return j.spec
	}
	return "@every " + j.interval.String()
}

// nextWait returns how long the runner sleeps after an invocation
// that finished at now. Fixed-interval jobs measure from the end of
// one invocation to the start of the next, so execution time
// accumulates as drift; cron-spec jobs fire at schedule times.
func (j *RecurringJob) nextWait(now time.Time) time.Duration {
	if j.schedule != nil {
		return j.schedule.Next(now).Sub(now)
	}
	return j.interval
}

func (j *RecurringJob) recordRun(start time.Time, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	j.lastRun = start
	if err != nil {
		j.lastError = err.Error()
	} else {
		j.lastError = ""
	}
}

func (j *RecurringJob) stats() (runs int64, lastRun time.Time, lastError string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs, j.lastRun, j.lastError
}
