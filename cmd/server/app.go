package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskloop/internal/config"
	"github.com/phrazzld/taskloop/internal/events"
	"github.com/phrazzld/taskloop/internal/taskloop"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Event system
	eventEmitter events.EventEmitter

	// Background scheduling
	taskLoop *taskloop.TaskLoop
}

// newApplication creates a new application instance with all dependencies
// initialized: the task loop, the event emitter with the task-building
// handler, and the built-in recurring jobs. The loop itself is not
// started here; Run starts it together with the HTTP server.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	app.taskLoop = taskloop.New(logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Bridge task request events to the loop.
	taskHandler := taskloop.NewEventHandler(app.taskLoop, logger)
	taskHandler.RegisterFactory(taskTypeLogMessage, newLogMessageTaskFactory(logger))

	emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter)
	if !ok {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}
	emitter.RegisterHandler(taskHandler)

	if err := app.registerJobs(); err != nil {
		return nil, fmt.Errorf("failed to register recurring jobs: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// registerJobs wires the built-in recurring jobs. Registration must
// happen before the loop starts; a duplicate name here is a
// programming error and surfaces as one.
func (app *application) registerJobs() error {
	err := app.taskLoop.Recurring("heartbeat", app.config.Jobs.HeartbeatInterval,
		func(ctx context.Context) error {
			app.logger.Info("heartbeat")
			return nil
		})
	if err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}

	err = app.taskLoop.Recurring("queue_stats", app.config.Jobs.StatsInterval,
		func(ctx context.Context) error {
			snap := app.taskLoop.Snapshot()
			app.logger.Info("queue stats",
				"state", snap.State,
				"queue_len", snap.QueueLen,
				"job_count", len(snap.Jobs))
			return nil
		})
	if err != nil {
		return fmt.Errorf("queue_stats: %w", err)
	}

	return nil
}

// Run starts the background loop and the HTTP server, handling
// lifecycle and cleanup. It returns when the server has shut down.
func (app *application) Run(ctx context.Context) error {
	// The loop shares the process with the server: started from the
	// startup path, stopped from the shutdown path via cleanup.
	if err := app.taskLoop.Start(); err != nil {
		return fmt.Errorf("failed to start task loop: %w", err)
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskLoop != nil {
		app.taskLoop.Stop()
	}
	app.logger.Info("Application shutdown completed")
}
