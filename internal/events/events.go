package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProgressEvent is one forwarded progress update for a task.
type ProgressEvent struct {
	// TaskID identifies the task the update belongs to
	TaskID uuid.UUID `json:"task_id"`

	// Progress is the task's overall completion on the 0-100 scale
	Progress float64 `json:"progress"`

	// Message is an optional human-readable status line
	Message string `json:"message,omitempty"`

	// At is when the update was published
	At time.Time `json:"at"`
}

// Handler is implemented by components that consume progress events.
// Handlers must not block significantly; the emitter runs them inline.
type Handler interface {
	// HandleProgress processes one progress event.
	HandleProgress(ctx context.Context, event ProgressEvent) error
}

// Emitter publishes progress events to all registered handlers.
type Emitter interface {
	// Emit delivers the event to every handler. If a handler fails the
	// event still reaches the remaining handlers; the first error is
	// returned.
	Emit(ctx context.Context, event ProgressEvent) error
}
