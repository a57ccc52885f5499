package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryEmitter dispatches progress events to handlers registered in
// memory.
type InMemoryEmitter struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEmitter creates a new InMemoryEmitter.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	return &InMemoryEmitter{
		handlers: make([]Handler, 0),
		logger:   logger.With("component", "progress_emitter"),
	}
}

// RegisterHandler adds a handler that will receive all future events.
func (e *InMemoryEmitter) RegisterHandler(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered progress handler", "handler_count", len(e.handlers))
}

// Emit publishes the event to all registered handlers. A failing
// handler does not stop delivery to the others; the first error
// encountered is returned.
func (e *InMemoryEmitter) Emit(ctx context.Context, event ProgressEvent) error {
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleProgress(ctx, event); err != nil {
			e.logger.Error("progress handler failed",
				"error", err,
				"handler_index", i,
				"task_id", event.TaskID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Publish adapts the emitter to the task manager's sink contract. It
// stamps the event and emits it with a background context, logging
// delivery failures instead of surfacing them into task state.
func (e *InMemoryEmitter) Publish(taskID uuid.UUID, progress float64, message string) {
	event := ProgressEvent{
		TaskID:   taskID,
		Progress: progress,
		Message:  message,
		At:       time.Now().UTC(),
	}
	if err := e.Emit(context.Background(), event); err != nil {
		e.logger.Warn("progress event delivery failed",
			"task_id", taskID,
			"error", err)
	}
}

// LogHandler writes progress events to the structured log. It is the
// default sink surface when no external channel is configured.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger.With("component", "progress_log")}
}

// HandleProgress logs the event.
func (h *LogHandler) HandleProgress(ctx context.Context, event ProgressEvent) error {
	h.logger.Info("task progress",
		"task_id", event.TaskID,
		"progress", event.Progress,
		"message", event.Message)
	return nil
}
