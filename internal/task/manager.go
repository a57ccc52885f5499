package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common sentinel errors returned by the Manager
var (
	// ErrShuttingDown indicates the manager no longer accepts work.
	ErrShuttingDown = errors.New("task manager is shutting down")

	// ErrTaskNotFound indicates the task id is not in the registry.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotPending indicates ExecuteTask was called on a task that
	// already started or finished. This is a programmer error at the
	// call site, not a runtime condition to absorb.
	ErrTaskNotPending = errors.New("task is not pending")
)

// cancelledMessage is stored as the task error on cancellation.
const cancelledMessage = "task cancelled"

// progressForwardDelta is the minimum progress change, in percentage
// points, before an update is forwarded to the sink. The exact value is
// a tuning parameter; any small positive threshold keeps sink chatter
// bounded.
const progressForwardDelta = 1.0

// ProgressSink receives progress updates for tasks that changed by more
// than the forwarding threshold. Implementations must not block
// significantly; the manager does not isolate slow sinks.
type ProgressSink interface {
	Publish(taskID uuid.UUID, progress float64, message string)
}

// Filter selects tasks in ListTasks. Zero-valued fields match any task.
type Filter struct {
	Type   Type
	Status Status
}

// ManagerConfig holds configuration for the task manager.
type ManagerConfig struct {
	// WorkerCount determines how many pool workers run submitted work.
	// If zero or negative, DefaultWorkerCount is used.
	WorkerCount int
}

// DefaultManagerConfig returns a ManagerConfig with reasonable defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{WorkerCount: DefaultWorkerCount}
}

// Manager owns the task registry. It creates tasks, submits their work
// to the pool, bridges completion back into task state, and serves
// queries and cancellation. All registry mutations happen under its
// lock; published Task state is only ever read through snapshots.
type Manager struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]*Task
	order    []uuid.UUID
	pool     *WorkerPool
	shutdown bool

	config ManagerConfig
	sink   ProgressSink
	logger *slog.Logger
}

// NewManager creates a Manager with a running worker pool. The sink is
// optional; pass nil when no live progress delivery is wanted.
func NewManager(config ManagerConfig, sink ProgressSink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		tasks:  make(map[uuid.UUID]*Task),
		pool:   NewWorkerPool(config.WorkerCount, logger),
		config: config,
		sink:   sink,
		logger: logger.With("component", "task_manager"),
	}
}

// CreateTask registers a new pending task and returns its snapshot.
// Metadata is stored opaquely and returned verbatim on every poll.
func (m *Manager) CreateTask(typ Type, metadata map[string]any) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return Snapshot{}, ErrShuttingDown
	}

	t := &Task{
		id:        uuid.New(),
		typ:       typ,
		metadata:  metadata,
		status:    StatusPending,
		createdAt: time.Now().UTC(),
	}
	m.tasks[t.id] = t
	m.order = append(m.order, t.id)

	m.logger.Debug("task created",
		"task_id", t.id,
		"task_type", typ,
		"task_count", len(m.tasks))

	return t.snapshot(), nil
}

// ExecuteTask transitions the task to running, submits fn to the pool
// and blocks until the work completes, fails, or is cancelled. The
// outcome is recorded as task state and never returned: work-function
// errors become status=failed. The returned error reports only call
// misuse (unknown id, task not pending) or manager shutdown.
func (m *Manager) ExecuteTask(ctx context.Context, id uuid.UUID, fn WorkFunc) error {
	m.mu.Lock()

	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("execute task %s: %w", id, ErrTaskNotFound)
	}
	if t.status != StatusPending {
		m.mu.Unlock()
		return fmt.Errorf("execute task %s in status %q: %w", id, t.status, ErrTaskNotPending)
	}
	if m.shutdown {
		now := time.Now().UTC()
		t.status = StatusCancelled
		t.errMsg = cancelledMessage
		t.completedAt = &now
		m.mu.Unlock()
		return ErrShuttingDown
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	now := time.Now().UTC()
	t.status = StatusRunning
	t.startedAt = &now
	t.cancel = cancel
	m.mu.Unlock()

	m.logger.Info("task started", "task_id", id, "task_type", t.typ)

	fut := m.pool.Submit(workCtx, fn)
	result, err := fut.Wait(workCtx)

	m.finalize(id, result, err)
	return nil
}

// finalize records the terminal state for a task whose work resolved.
// If cancellation already marked the task terminal, the work's outcome
// is discarded.
func (m *Manager) finalize(id uuid.UUID, result any, err error) {
	m.mu.Lock()

	t, ok := m.tasks[id]
	if !ok {
		// Reset raced with a running task; nothing to record.
		m.mu.Unlock()
		return
	}

	if t.status.Terminal() {
		t.cancel = nil
		m.mu.Unlock()
		return
	}

	now := time.Now().UTC()
	t.completedAt = &now
	t.cancel = nil

	switch {
	case err == nil:
		t.status = StatusCompleted
		t.result = result
		t.progress = 100
	case errors.Is(err, context.Canceled):
		t.status = StatusCancelled
		t.errMsg = cancelledMessage
	default:
		t.status = StatusFailed
		t.errMsg = err.Error()
	}

	status := t.status
	typ := t.typ
	m.mu.Unlock()

	switch status {
	case StatusCompleted:
		m.logger.Info("task completed", "task_id", id, "task_type", typ)
	case StatusCancelled:
		m.logger.Info("task cancelled", "task_id", id, "task_type", typ)
	default:
		m.logger.Error("task failed", "task_id", id, "task_type", typ, "error", err)
	}
}

// GetTask returns a snapshot of the task, or false if the id is unknown.
func (m *Manager) GetTask(id uuid.UUID) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return Snapshot{}, false
	}
	return t.snapshot(), true
}

// ListTasks returns snapshots of tasks matching the filter, in
// insertion order. The returned slice does not alias manager state.
func (m *Manager) ListTasks(filter Filter) []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshots := make([]Snapshot, 0, len(m.order))
	for _, id := range m.order {
		t := m.tasks[id]
		if filter.Type != "" && t.typ != filter.Type {
			continue
		}
		if filter.Status != "" && t.status != filter.Status {
			continue
		}
		snapshots = append(snapshots, t.snapshot())
	}
	return snapshots
}

// CancelTask requests cancellation of a running task. It returns true
// if the task was running and is now cancelled, false if the id is
// unknown or the task is not running. Cancellation is cooperative: side
// effects the work already produced are not rolled back.
func (m *Manager) CancelTask(id uuid.UUID) bool {
	m.mu.Lock()

	t, ok := m.tasks[id]
	if !ok || t.status != StatusRunning {
		m.mu.Unlock()
		return false
	}

	now := time.Now().UTC()
	t.status = StatusCancelled
	t.errMsg = cancelledMessage
	t.completedAt = &now

	cancel := t.cancel
	t.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	m.logger.Info("task cancellation requested", "task_id", id)
	return true
}

// UpdateProgress clamps value to [0, 100] and stores it. The update is
// forwarded to the sink only when it moved by more than the forwarding
// threshold since the last forwarded value, or when it first reaches
// 100. Unknown ids are ignored.
func (m *Manager) UpdateProgress(id uuid.UUID, value float64, message string) {
	m.mu.Lock()

	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		m.logger.Debug("progress update for unknown task", "task_id", id)
		return
	}

	value = clampProgress(value)
	t.progress = value

	forward := false
	if m.sink != nil {
		delta := value - t.lastForwarded
		if delta < 0 {
			delta = -delta
		}
		if delta > progressForwardDelta || (value == 100 && t.lastForwarded != 100) {
			t.lastForwarded = value
			forward = true
		}
	}
	m.mu.Unlock()

	if forward {
		m.sink.Publish(id, value, message)
	}
}

// Reporter returns a progress reporter bound to the given task id.
func (m *Manager) Reporter(id uuid.UUID) *Reporter {
	return &Reporter{manager: m, taskID: id}
}

// Shutdown stops the manager. New CreateTask and ExecuteTask calls fail
// with ErrShuttingDown, every pending or running task is cancelled, and
// the pool is drained (graceful) or stopped immediately.
func (m *Manager) Shutdown(graceful bool) {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	cancels := m.cancelAllLocked()
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	m.pool.Stop(graceful)
	m.logger.Info("task manager shut down", "graceful", graceful)
}

// Reset cancels everything, clears the registry and replaces the pool.
// It exists to isolate test cases from leaked background work and must
// not be called in production paths.
func (m *Manager) Reset() {
	m.mu.Lock()
	cancels := m.cancelAllLocked()
	oldPool := m.pool
	m.tasks = make(map[uuid.UUID]*Task)
	m.order = nil
	m.pool = NewWorkerPool(m.config.WorkerCount, m.logger)
	m.shutdown = false
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	oldPool.Stop(false)
}

// cancelAllLocked marks every non-terminal task cancelled and collects
// their context cancel functions. Caller must hold the lock; the
// returned functions must be invoked after it is released.
func (m *Manager) cancelAllLocked() []context.CancelFunc {
	var cancels []context.CancelFunc
	now := time.Now().UTC()
	for _, t := range m.tasks {
		if t.status.Terminal() {
			continue
		}
		t.status = StatusCancelled
		t.errMsg = cancelledMessage
		completed := now
		t.completedAt = &completed
		if t.cancel != nil {
			cancels = append(cancels, t.cancel)
			t.cancel = nil
		}
	}
	return cancels
}
