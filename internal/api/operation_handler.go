package api

import (
	"errors"
	"net/http"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/api/shared"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/service"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/task"
)

// OperationHandler serves the long-running admin operations. Each POST
// registers a background task and answers 202 Accepted with the task
// snapshot; clients poll the task endpoints for the outcome.
type OperationHandler struct {
	admin service.AdminService
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(admin service.AdminService) *OperationHandler {
	return &OperationHandler{admin: admin}
}

// Cleanup handles POST /api/operations/cleanup.
func (h *OperationHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.admin.ClearContextBatch(r.Context(), req.Context, req.DryRun)
	if err != nil {
		h.respondLaunchError(w, r, "cleanup", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, snap)
}

// Migrate handles POST /api/operations/migrate.
func (h *OperationHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	var req MigrateRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.admin.MigrateContext(r.Context(), req.SourceContext, req.TargetContext)
	if err != nil {
		h.respondLaunchError(w, r, "migrate", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, snap)
}

// Export handles POST /api/operations/export.
func (h *OperationHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.admin.ExportSubjects(r.Context(), req.Context)
	if err != nil {
		h.respondLaunchError(w, r, "export", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, snap)
}

// ListOperations handles GET /api/operations. The catalog tells clients
// which operations answer directly and which return a task to poll.
func (h *OperationHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, task.Operations())
}

// decode parses and validates the request body, writing the error
// response itself. Returns false when the request was rejected.
func (h *OperationHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

// respondLaunchError maps task-registration failures to status codes.
// The raw error may quote registry URLs with embedded credentials, so
// it is only ever logged through the redacting path.
func (h *OperationHandler) respondLaunchError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if errors.Is(err, task.ErrShuttingDown) {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Service is shutting down")
		return
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
		"Failed to start "+operation+" operation", err)
}
