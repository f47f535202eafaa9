package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskloop/internal/api/shared"
	"github.com/phrazzld/taskloop/internal/events"
	"github.com/phrazzld/taskloop/internal/taskloop"
)

// SchedulerHandler exposes the background loop over HTTP: clients can
// request a task run and inspect the loop's state. Task execution
// itself stays fire-and-forget; the submit endpoint only confirms the
// request was accepted.
type SchedulerHandler struct {
	emitter events.EventEmitter
	loop    *taskloop.TaskLoop
	logger  *slog.Logger
}

// NewSchedulerHandler creates a handler publishing to emitter and
// reading snapshots from loop.
func NewSchedulerHandler(
	emitter events.EventEmitter,
	loop *taskloop.TaskLoop,
	logger *slog.Logger,
) *SchedulerHandler {
	return &SchedulerHandler{
		emitter: emitter,
		loop:    loop,
		logger:  logger.With("component", "scheduler_handler"),
	}
}

// SubmitTaskRequest is the request body for SubmitTask.
type SubmitTaskRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SubmitTaskResponse confirms an accepted task request.
type SubmitTaskResponse struct {
	EventID string `json:"event_id"`
}

// SubmitTask handles POST /api/tasks. It validates the request,
// emits a task request event and returns 202; the task runs in the
// background and its outcome is only visible in logs and snapshots.
func (h *SchedulerHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "type is required")
		return
	}

	event, err := events.NewTaskRequestEvent(req.Type, req.Payload)
	if err != nil {
		h.logger.Error("failed to create task request event",
			"error", err,
			"task_type", req.Type)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "failed to create task request")
		return
	}

	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		// A handler rejected the request, typically a malformed
		// payload for the requested task type.
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "task request could not be processed")
		return
	}

	h.logger.Debug("task request accepted",
		"event_id", event.ID,
		"task_type", req.Type)
	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitTaskResponse{
		EventID: event.ID.String(),
	})
}

// GetStatus handles GET /api/scheduler. It returns the loop's current
// state, queue depth and per-job run statistics.
func (h *SchedulerHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.loop.Snapshot())
}
