package taskloop

import (
	"log/slog"
	"sync"
)

// Queue is an unbounded FIFO queue of pending tasks. Enqueue never
// blocks and never fails regardless of queue depth; the consumer
// parks on the wake channel while the queue is empty and drains the
// whole pending batch on each wake-up.
type Queue struct {
	mu     sync.Mutex
	items  []Task
	wake   chan struct{}
	logger *slog.Logger
}

// NewQueue creates an empty task queue.
func NewQueue(logger *slog.Logger) *Queue {
	return &Queue{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Enqueue appends task and returns immediately without blocking the
// caller.
func (q *Queue) Enqueue(task Task) {
	q.mu.Lock()
	q.items = append(q.items, task)
	depth := len(q.items)
	q.mu.Unlock()

	// One pending token is enough: the consumer drains every task it
	// can see on each wake-up, so extra tokens carry no information.
	select {
	case q.wake <- struct{}{}:
	default:
	}

	q.logger.Debug("task enqueued",
		"task_id", task.ID(),
		"task_name", task.Name(),
		"queue_len", depth)
}

// Drain removes and returns all currently queued tasks in enqueue
// order. Returns nil when the queue is empty.
func (q *Queue) Drain() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.items
	q.items = nil
	return batch
}

// Wake returns the channel the consumer blocks on while waiting for
// work. It is signalled at least once after every Enqueue.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Len reports the number of tasks currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
