package taskloop

import (
	"context"

	"github.com/google/uuid"
)

// Task represents a unit of background work to be processed
// Version: 1.0
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Name returns a human-readable label used in logs
	Name() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// funcTask adapts a plain function to the Task interface.
type funcTask struct {
	id   uuid.UUID
	name string
	fn   func(ctx context.Context) error
}

func (t *funcTask) ID() uuid.UUID { return t.id }

func (t *funcTask) Name() string { return t.name }

func (t *funcTask) Execute(ctx context.Context) error { return t.fn(ctx) }

// NewFunc wraps fn into a Task with a freshly generated ID. The name
// is used for logging only and does not need to be unique.
func NewFunc(name string, fn func(ctx context.Context) error) Task {
	return &funcTask{
		id:   uuid.New(),
		name: name,
		fn:   fn,
	}
}
