package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/api/shared"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/task"
)

// TaskHandler serves the task polling and cancellation endpoints.
type TaskHandler struct {
	tasks *task.Manager
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *task.Manager) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ListTasks handles GET /api/tasks. Optional type and status query
// parameters narrow the listing; invalid values are rejected rather
// than silently matching nothing.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var filter task.Filter

	if raw := r.URL.Query().Get("type"); raw != "" {
		typ := task.Type(raw)
		if !typ.Valid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown task type: "+raw)
			return
		}
		filter.Type = typ
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := task.Status(raw)
		if !status.Valid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown task status: "+raw)
			return
		}
		filter.Status = status
	}

	shared.RespondWithJSON(w, r, http.StatusOK, h.tasks.ListTasks(filter))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	snap, ok := h.tasks.GetTask(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// CancelTask handles DELETE /api/tasks/{id}. Only a running task can be
// cancelled; anything else is a conflict.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	if _, ok := h.tasks.GetTask(id); !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if !h.tasks.CancelTask(id) {
		shared.RespondWithError(w, r, http.StatusConflict, "Task is not running")
		return
	}

	snap, _ := h.tasks.GetTask(id)
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}
