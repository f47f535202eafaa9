package taskloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State describes the loop's lifecycle phase.
type State string

// Lifecycle states. Transitions are stopped -> starting -> running ->
// stopping -> stopped; a stopped loop may be started again with a
// fresh consumer and runner set.
const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Registration errors returned by Recurring and RecurringSpec.
var (
	ErrDuplicateJob   = errors.New("recurring job name already registered")
	ErrAlreadyStarted = errors.New("task loop already started")
)

// TaskLoop coordinates the task queue consumer and the recurring job
// runners. It owns no network or storage resources of its own; the
// host server starts it from its startup hook and stops it from its
// shutdown hook.
type TaskLoop struct {
	queue  *Queue
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	jobs   map[string]*RecurringJob
	order  []*RecurringJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	errHandler func(name string, err error)
}

// New creates a stopped TaskLoop with an empty queue and registry.
func New(logger *slog.Logger) *TaskLoop {
	scoped := logger.With("component", "taskloop")
	l := &TaskLoop{
		logger: scoped,
		state:  StateStopped,
		jobs:   make(map[string]*RecurringJob),
	}
	l.queue = NewQueue(scoped)
	l.errHandler = func(name string, err error) {
		scoped.Error("background work failed",
			"name", name,
			"error", err)
	}
	return l
}

// SetErrorHandler replaces the handler invoked when a task or job
// invocation fails. The default handler logs the failure. Must be
// called before Start.
func (l *TaskLoop) SetErrorHandler(handler func(name string, err error)) {
	l.errHandler = handler
}

// Recurring registers a fixed-interval job. The first invocation
// fires immediately when the loop starts unless WithInitialDelay is
// given. The interval is measured from the end of one invocation to
// the start of the next.
//
// Registration is only allowed while the loop is stopped; a duplicate
// name is rejected with ErrDuplicateJob rather than silently
// overwriting the earlier registration.
func (l *TaskLoop) Recurring(
	name string,
	interval time.Duration,
	action func(ctx context.Context) error,
	opts ...JobOption,
) error {
	if interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", interval)
	}
	job := &RecurringJob{
		name:     name,
		interval: interval,
		action:   action,
	}
	for _, opt := range opts {
		opt(job)
	}
	return l.register(job)
}

// RecurringSpec registers a job driven by a cron expression or an
// "@every"/"@hourly" descriptor. Spec-driven jobs fire at schedule
// times rather than immediately on start.
func (l *TaskLoop) RecurringSpec(
	name string,
	spec string,
	action func(ctx context.Context) error,
	opts ...JobOption,
) error {
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("failed to parse schedule %q: %w", spec, err)
	}
	job := &RecurringJob{
		name:     name,
		schedule: schedule,
		spec:     spec,
		action:   action,
	}
	for _, opt := range opts {
		opt(job)
	}
	return l.register(job)
}

func (l *TaskLoop) register(job *RecurringJob) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateStopped {
		return fmt.Errorf("%w: cannot register job %q", ErrAlreadyStarted, job.name)
	}
	if _, exists := l.jobs[job.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.name)
	}

	l.jobs[job.name] = job
	l.order = append(l.order, job)
	l.logger.Debug("recurring job registered",
		"job", job.name,
		"schedule", job.Spec())
	return nil
}

// Submit enqueues task for background execution and returns
// immediately; it never blocks and never fails. Tasks submitted
// before Start are drained once the consumer starts, and tasks
// submitted after Stop are held for a future Start.
func (l *TaskLoop) Submit(task Task) {
	l.queue.Enqueue(task)
}

// SubmitFunc wraps fn into a task and submits it.
func (l *TaskLoop) SubmitFunc(name string, fn func(ctx context.Context) error) {
	l.Submit(NewFunc(name, fn))
}

// Start spawns the task consumer and one runner per registered job.
// Calling Start while the loop is not stopped is a no-op with a
// warning; it never spawns a duplicate consumer or runner set.
func (l *TaskLoop) Start() error {
	l.mu.Lock()
	if l.state != StateStopped {
		state := l.state
		l.mu.Unlock()
		l.logger.Warn("start ignored, task loop is not stopped", "state", state)
		return nil
	}
	l.state = StateStarting
	l.ctx, l.cancel = context.WithCancel(context.Background())

	for _, job := range l.order {
		l.wg.Add(1)
		go l.runJob(l.ctx, job)
		l.logger.Info("recurring job runner started",
			"job", job.name,
			"schedule", job.Spec())
	}

	l.wg.Add(1)
	go l.consume(l.ctx)

	l.state = StateRunning
	jobCount := len(l.order)
	l.mu.Unlock()

	l.logger.Info("task loop started",
		"job_count", jobCount,
		"queued", l.queue.Len())
	return nil
}

// Stop signals the consumer and all job runners to exit at their next
// suspension point and returns once those loops have exited. Launched
// fire-and-forget tasks and in-flight job invocations are not
// interrupted, only no longer waited upon or rescheduled.
func (l *TaskLoop) Stop() {
	l.mu.Lock()
	if l.state != StateRunning {
		state := l.state
		l.mu.Unlock()
		l.logger.Warn("stop ignored, task loop is not running", "state", state)
		return
	}
	l.state = StateStopping
	cancel := l.cancel
	l.mu.Unlock()

	cancel()
	l.wg.Wait()

	l.mu.Lock()
	l.state = StateStopped
	l.mu.Unlock()

	l.logger.Info("task loop stopped", "queued", l.queue.Len())
}

// State reports the loop's current lifecycle phase.
func (l *TaskLoop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// consume is the task consumer loop. It parks until the queue signals
// pending work, removes the whole batch in enqueue order and launches
// each task concurrently without waiting for any of them to finish.
func (l *TaskLoop) consume(ctx context.Context) {
	defer l.wg.Done()

	l.logger.Debug("task consumer started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("task consumer stopped")
			return
		case <-l.queue.Wake():
			for _, task := range l.queue.Drain() {
				go l.runTask(task)
			}
		}
	}
}

// runTask executes a single fire-and-forget task under an isolating
// wrapper: panics and returned errors are reported to the error
// handler and discarded, never propagated to the consumer loop.
func (l *TaskLoop) runTask(task Task) {
	logger := l.logger.With(
		"task_id", task.ID(),
		"task_name", task.Name(),
	)
	defer func() {
		if r := recover(); r != nil {
			l.errHandler(task.Name(), fmt.Errorf("panic: %v", r))
		}
	}()

	logger.Debug("task started")

	// Launched work is detached from the loop context: Stop prevents
	// new launches but does not cancel tasks already in flight.
	if err := task.Execute(context.Background()); err != nil {
		l.errHandler(task.Name(), err)
		return
	}

	logger.Debug("task completed")
}

// runJob is the perpetual runner loop for a single recurring job.
// A failing or slow invocation delays only this job's own next
// iteration; other jobs and the consumer are unaffected.
func (l *TaskLoop) runJob(ctx context.Context, job *RecurringJob) {
	defer l.wg.Done()

	if job.initialDelay || job.schedule != nil {
		if !l.sleep(ctx, job.nextWait(time.Now())) {
			return
		}
	}

	for {
		l.invokeJob(job)
		if !l.sleep(ctx, job.nextWait(time.Now())) {
			return
		}
	}
}

// invokeJob runs one invocation of job, recovering panics and
// recording run stats so the runner always keeps its schedule.
func (l *TaskLoop) invokeJob(job *RecurringJob) {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return job.action(context.Background())
	}()

	job.recordRun(start, err)
	if err != nil {
		l.errHandler(job.name, err)
	}
}

// sleep suspends for d or until the loop is stopping, whichever comes
// first. Returns false when the loop is stopping.
func (l *TaskLoop) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
