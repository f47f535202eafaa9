package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskloop/internal/taskloop"
)

// Task types accepted over the submit endpoint.
const (
	taskTypeLogMessage = "log_message"
)

// logMessagePayload is the payload for log_message tasks: write a
// message to the log after an optional delay. It exists to exercise
// and demonstrate the fire-and-forget path end to end.
type logMessagePayload struct {
	Message      string `json:"message"`
	DelaySeconds int    `json:"delay_seconds,omitempty"`
}

// newLogMessageTaskFactory builds log_message tasks from event
// payloads. Payload validation happens here, while the request is
// still attributable; execution failures are only visible in logs.
func newLogMessageTaskFactory(logger *slog.Logger) taskloop.TaskFactory {
	return taskloop.TaskFactoryFunc(func(payload json.RawMessage) (taskloop.Task, error) {
		var p logMessagePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		if p.Message == "" {
			return nil, fmt.Errorf("message is required")
		}

		return taskloop.NewFunc(taskTypeLogMessage, func(ctx context.Context) error {
			if p.DelaySeconds > 0 {
				select {
				case <-time.After(time.Duration(p.DelaySeconds) * time.Second):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			logger.Info("log message task", "message", p.Message)
			return nil
		}), nil
	})
}
