package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status represents the current lifecycle state of a task
type Status string

// Possible task status values
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final. A task in a terminal
// state never transitions again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Type classifies the operation a task performs. It is informational
// and used only for filtering; the manager never interprets it.
type Type string

// Known task types
const (
	TypeMigration Type = "migration"
	TypeCleanup   Type = "cleanup"
	TypeExport    Type = "export"
	TypeImport    Type = "import"
	TypeSync      Type = "sync"
)

// Valid reports whether t is a known task type.
func (t Type) Valid() bool {
	switch t {
	case TypeMigration, TypeCleanup, TypeExport, TypeImport, TypeSync:
		return true
	}
	return false
}

// WorkFunc is the unit of work executed for a task. The context is
// cancelled when the task is cancelled or the manager shuts down; work
// that intends to honor cancellation should check it at safe points.
// The returned value becomes the task result on success.
type WorkFunc func(ctx context.Context) (any, error)

// Task is the manager-internal record for one unit of background work.
// The identity fields are immutable after creation; the lifecycle
// fields are mutated only by the Manager under its lock.
type Task struct {
	id       uuid.UUID
	typ      Type
	metadata map[string]any

	status      Status
	createdAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
	progress    float64
	errMsg      string
	result      any

	// cancel aborts the task's work context; set while running.
	cancel context.CancelFunc

	// lastForwarded is the progress value most recently sent to the
	// sink, used to suppress chatty updates.
	lastForwarded float64
}

// Snapshot is the serializable, caller-facing view of a task. It is a
// copy: mutations made by the manager after the snapshot was taken are
// not visible through it.
type Snapshot struct {
	ID          uuid.UUID      `json:"id"`
	Type        Type           `json:"type"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	Progress    float64        `json:"progress"`
	Error       string         `json:"error,omitempty"`
	Result      any            `json:"result,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// snapshot copies the task's current state. Caller must hold the
// manager lock.
func (t *Task) snapshot() Snapshot {
	snap := Snapshot{
		ID:        t.id,
		Type:      t.typ,
		Status:    t.status,
		CreatedAt: t.createdAt,
		Progress:  t.progress,
		Error:     t.errMsg,
		Result:    t.result,
	}
	if t.startedAt != nil {
		started := *t.startedAt
		snap.StartedAt = &started
	}
	if t.completedAt != nil {
		completed := *t.completedAt
		snap.CompletedAt = &completed
	}
	if t.metadata != nil {
		snap.Metadata = make(map[string]any, len(t.metadata))
		for k, v := range t.metadata {
			snap.Metadata[k] = v
		}
	}
	return snap
}

// clampProgress bounds a progress value to the [0, 100] scale.
func clampProgress(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
