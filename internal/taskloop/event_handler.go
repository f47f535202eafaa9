package taskloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskloop/internal/events"
)

// TaskFactory builds a Task from a raw event payload.
// Version: 1.0
type TaskFactory interface {
	// CreateTask validates the payload and returns a ready-to-run task.
	CreateTask(payload json.RawMessage) (Task, error)
}

// TaskFactoryFunc adapts a function to the TaskFactory interface.
type TaskFactoryFunc func(payload json.RawMessage) (Task, error)

// CreateTask calls f.
func (f TaskFactoryFunc) CreateTask(payload json.RawMessage) (Task, error) {
	return f(payload)
}

// EventHandler bridges task request events to the loop: it looks up
// the factory registered for the event type, builds the task and
// submits it for background execution.
type EventHandler struct {
	loop   *TaskLoop
	logger *slog.Logger

	mu        sync.RWMutex
	factories map[string]TaskFactory
}

// NewEventHandler creates an event handler submitting to loop.
func NewEventHandler(loop *TaskLoop, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		loop:      loop,
		logger:    logger.With("component", "task_event_handler"),
		factories: make(map[string]TaskFactory),
	}
}

// RegisterFactory maps an event type to the factory that builds its
// tasks. A later registration for the same type replaces the earlier
// one.
func (h *EventHandler) RegisterFactory(eventType string, factory TaskFactory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.factories[eventType] = factory
	h.logger.Debug("task factory registered", "event_type", eventType)
}

// HandleEvent processes a task request event. Events with no
// registered factory are ignored so that unrelated handlers can claim
// them.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	h.mu.RLock()
	factory, ok := h.factories[event.Type]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	task, err := factory.CreateTask(event.Payload)
	if err != nil {
		h.logger.Error("failed to create task from event",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	h.loop.Submit(task)
	h.logger.Debug("task submitted from event",
		"task_id", task.ID(),
		"event_type", event.Type,
		"event_id", event.ID)
	return nil
}

// Ensure EventHandler implements events.EventHandler
var _ events.EventHandler = (*EventHandler)(nil)
