package taskloop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func noopTask(name string) Task {
	return NewFunc(name, func(ctx context.Context) error { return nil })
}

func TestNewQueue(t *testing.T) {
	queue := NewQueue(setupTestLogger())

	assert.NotNil(t, queue)
	assert.Equal(t, 0, queue.Len())
	assert.Nil(t, queue.Drain())
}

func TestEnqueueDrainPreservesFIFOOrder(t *testing.T) {
	queue := NewQueue(setupTestLogger())

	for i := 0; i < 10; i++ {
		queue.Enqueue(noopTask(fmt.Sprintf("task-%d", i)))
	}
	require.Equal(t, 10, queue.Len())

	batch := queue.Drain()
	require.Len(t, batch, 10)
	for i, task := range batch {
		assert.Equal(t, fmt.Sprintf("task-%d", i), task.Name())
	}

	assert.Equal(t, 0, queue.Len())
	assert.Nil(t, queue.Drain())
}

func TestEnqueueNeverBlocks(t *testing.T) {
	queue := NewQueue(setupTestLogger())

	// No consumer is draining; an unbounded queue must absorb all of
	// this without ever suspending the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			queue.Enqueue(noopTask("bulk"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked with no consumer running")
	}
	assert.Equal(t, 10000, queue.Len())
}

func TestWakeSignalledAfterEnqueue(t *testing.T) {
	queue := NewQueue(setupTestLogger())

	queue.Enqueue(noopTask("first"))

	select {
	case <-queue.Wake():
	case <-time.After(time.Second):
		t.Fatal("Wake channel was not signalled after Enqueue")
	}

	// A single token covers any number of pending tasks.
	queue.Enqueue(noopTask("second"))
	queue.Enqueue(noopTask("third"))
	assert.Len(t, queue.Drain(), 3)
}

func TestDrainBetweenEnqueuesLosesNothing(t *testing.T) {
	queue := NewQueue(setupTestLogger())

	queue.Enqueue(noopTask("a"))
	<-queue.Wake()
	require.Len(t, queue.Drain(), 1)

	// An enqueue after the drain must leave a wake token behind so
	// the consumer sees the new task on its next pass.
	queue.Enqueue(noopTask("b"))
	select {
	case <-queue.Wake():
	case <-time.After(time.Second):
		t.Fatal("Wake token missing after post-drain enqueue")
	}
	require.Len(t, queue.Drain(), 1)
}
