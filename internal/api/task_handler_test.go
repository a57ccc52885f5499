package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/task"
)

func newTaskRouter(t *testing.T) (*chi.Mux, *task.Manager) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := task.NewManager(task.ManagerConfig{WorkerCount: 2}, nil, log)
	t.Cleanup(func() { manager.Shutdown(false) })

	h := NewTaskHandler(manager)
	r := chi.NewRouter()
	r.Get("/api/tasks", h.ListTasks)
	r.Get("/api/tasks/{id}", h.GetTask)
	r.Delete("/api/tasks/{id}", h.CancelTask)
	return r, manager
}

func doRequest(r http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestListTasks_Empty(t *testing.T) {
	r, _ := newTaskRouter(t)

	rr := doRequest(r, http.MethodGet, "/api/tasks")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestListTasks_FiltersByTypeAndStatus(t *testing.T) {
	r, manager := newTaskRouter(t)

	_, err := manager.CreateTask(task.TypeCleanup, nil)
	require.NoError(t, err)
	_, err = manager.CreateTask(task.TypeExport, nil)
	require.NoError(t, err)

	rr := doRequest(r, http.MethodGet, "/api/tasks?type=cleanup")
	require.Equal(t, http.StatusOK, rr.Code)

	var listed []task.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, task.TypeCleanup, listed[0].Type)

	rr = doRequest(r, http.MethodGet, "/api/tasks?status=pending")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)
}

func TestListTasks_RejectsUnknownFilterValues(t *testing.T) {
	r, _ := newTaskRouter(t)

	rr := doRequest(r, http.MethodGet, "/api/tasks?type=bogus")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(r, http.MethodGet, "/api/tasks?status=bogus")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTask(t *testing.T) {
	r, manager := newTaskRouter(t)

	snap, err := manager.CreateTask(task.TypeExport, map[string]any{"context": "production"})
	require.NoError(t, err)

	rr := doRequest(r, http.MethodGet, "/api/tasks/"+snap.ID.String())
	require.Equal(t, http.StatusOK, rr.Code)

	var got task.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, task.StatusPending, got.Status)
	assert.Equal(t, "production", got.Metadata["context"])
}

func TestGetTask_NotFound(t *testing.T) {
	r, _ := newTaskRouter(t)

	rr := doRequest(r, http.MethodGet, "/api/tasks/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetTask_InvalidID(t *testing.T) {
	r, _ := newTaskRouter(t)

	rr := doRequest(r, http.MethodGet, "/api/tasks/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCancelTask_Running(t *testing.T) {
	r, manager := newTaskRouter(t)

	snap, err := manager.CreateTask(task.TypeMigration, nil)
	require.NoError(t, err)

	started := make(chan struct{})
	go func() {
		_ = manager.ExecuteTask(context.Background(), snap.ID, func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
	}()
	<-started

	// The task may not be observably running the instant the work
	// starts; poll for the transition.
	require.Eventually(t, func() bool {
		got, _ := manager.GetTask(snap.ID)
		return got.Status == task.StatusRunning
	}, 2*time.Second, 2*time.Millisecond)

	rr := doRequest(r, http.MethodDelete, "/api/tasks/"+snap.ID.String())
	require.Equal(t, http.StatusOK, rr.Code)

	var got task.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, task.StatusCancelled, got.Status)
}

func TestCancelTask_NotRunningConflict(t *testing.T) {
	r, manager := newTaskRouter(t)

	snap, err := manager.CreateTask(task.TypeCleanup, nil)
	require.NoError(t, err)

	// Pending, not running.
	rr := doRequest(r, http.MethodDelete, "/api/tasks/"+snap.ID.String())
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCancelTask_NotFound(t *testing.T) {
	r, _ := newTaskRouter(t)

	rr := doRequest(r, http.MethodDelete, "/api/tasks/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
