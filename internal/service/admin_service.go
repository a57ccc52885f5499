package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/registry"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/task"
)

// RegistryClient is the slice of the registry client the admin
// operations need.
type RegistryClient interface {
	// ListSubjects returns the bare subject names in a context
	ListSubjects(ctx context.Context, registryContext string) ([]string, error)

	// GetLatestSchema fetches the latest version under a subject
	GetLatestSchema(ctx context.Context, registryContext, subject string) (*registry.Schema, error)

	// RegisterSchema registers a schema and returns its assigned id
	RegisterSchema(ctx context.Context, registryContext, subject string, schema *registry.Schema) (int, error)

	// DeleteSubject soft-deletes a subject and returns its versions
	DeleteSubject(ctx context.Context, registryContext, subject string) ([]int, error)
}

// AdminService provides the long-running admin operations. Each call
// registers a background task and returns its snapshot immediately; the
// caller polls the task id for the outcome.
type AdminService interface {
	// ClearContextBatch deletes every subject in a context. With dryRun
	// the subjects are only counted.
	ClearContextBatch(ctx context.Context, registryContext string, dryRun bool) (task.Snapshot, error)

	// MigrateContext copies the latest schema of every subject from one
	// context to another.
	MigrateContext(ctx context.Context, sourceContext, targetContext string) (task.Snapshot, error)

	// ExportSubjects collects the latest schema of every subject in a
	// context into the task result.
	ExportSubjects(ctx context.Context, registryContext string) (task.Snapshot, error)
}

// adminServiceImpl implements the AdminService interface
type adminServiceImpl struct {
	registry    RegistryClient
	tasks       *task.Manager
	fanoutLimit int
	logger      *slog.Logger
}

// NewAdminService creates a new AdminService.
// It returns an error if any of the required dependencies are nil.
func NewAdminService(
	registryClient RegistryClient,
	tasks *task.Manager,
	fanoutLimit int,
	logger *slog.Logger,
) (AdminService, error) {
	if registryClient == nil {
		return nil, &AdminServiceError{
			Operation: "create_service",
			Message:   "registryClient cannot be nil",
		}
	}
	if tasks == nil {
		return nil, &AdminServiceError{
			Operation: "create_service",
			Message:   "tasks cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &adminServiceImpl{
		registry:    registryClient,
		tasks:       tasks,
		fanoutLimit: fanoutLimit,
		logger:      logger.With("component", "admin_service"),
	}, nil
}

// launch registers a task and starts its work on a background
// goroutine so the caller's request path returns immediately. The work
// context is detached from the request context: the task outlives the
// request that submitted it. makeWork receives the progress reporter
// bound to the freshly created task.
func (s *adminServiceImpl) launch(
	typ task.Type,
	metadata map[string]any,
	makeWork func(reporter *task.Reporter) task.WorkFunc,
) (task.Snapshot, error) {
	snap, err := s.tasks.CreateTask(typ, metadata)
	if err != nil {
		return task.Snapshot{}, err
	}

	work := makeWork(s.tasks.Reporter(snap.ID))

	go func() {
		if err := s.tasks.ExecuteTask(context.Background(), snap.ID, work); err != nil {
			s.logger.Error("task execution was rejected",
				"task_id", snap.ID,
				"task_type", typ,
				"error", err)
		}
	}()

	return snap, nil
}

// ClearContextBatch deletes every subject in a context through the
// bounded fan-out executor, reporting aggregate progress per completion.
func (s *adminServiceImpl) ClearContextBatch(
	ctx context.Context,
	registryContext string,
	dryRun bool,
) (task.Snapshot, error) {
	metadata := map[string]any{
		"operation": "clear_context_batch",
		"context":   registryContext,
		"dry_run":   dryRun,
	}

	return s.launch(task.TypeCleanup, metadata, func(reporter *task.Reporter) task.WorkFunc {
		return func(ctx context.Context) (any, error) {
			return s.clearContext(ctx, reporter, registryContext, dryRun)
		}
	})
}

// clearContext is the work body for ClearContextBatch.
func (s *adminServiceImpl) clearContext(
	ctx context.Context,
	reporter *task.Reporter,
	registryContext string,
	dryRun bool,
) (any, error) {
	reporter.Update(0, "listing subjects")

	subjects, err := s.registry.ListSubjects(ctx, registryContext)
	if err != nil {
		return nil, fmt.Errorf("list subjects in %q: %w", registryContext, err)
	}
	reporter.Update(10, fmt.Sprintf("found %d subjects", len(subjects)))

	if dryRun {
		reporter.Update(100, "dry run complete")
		return map[string]any{
			"context":        registryContext,
			"dry_run":        true,
			"subjects_found": len(subjects),
			"deleted":        0,
		}, nil
	}

	phase := reporter.Phase("deleting subjects", 10, 90, len(subjects))
	result := task.RunBatch(ctx, subjects, s.fanoutLimit,
		func(ctx context.Context, subject string) error {
			_, err := s.registry.DeleteSubject(ctx, registryContext, subject)
			return err
		},
		func(completed, total int) {
			phase.UpdateItem(completed - 1)
		})
	phase.Complete()

	return map[string]any{
		"context":   registryContext,
		"dry_run":   false,
		"attempted": result.Attempted,
		"deleted":   result.Succeeded,
		"failed":    result.Failed,
		"failures":  result.Failures,
	}, nil
}

// MigrateContext copies the latest schema of every source subject into
// the target context. Subjects are migrated one at a time so ordering
// stays deterministic; the work checks for cancellation between
// subjects.
func (s *adminServiceImpl) MigrateContext(
	ctx context.Context,
	sourceContext, targetContext string,
) (task.Snapshot, error) {
	metadata := map[string]any{
		"operation":      "migrate_context",
		"source_context": sourceContext,
		"target_context": targetContext,
	}

	return s.launch(task.TypeMigration, metadata, func(reporter *task.Reporter) task.WorkFunc {
		return func(ctx context.Context) (any, error) {
			return s.migrateContext(ctx, reporter, sourceContext, targetContext)
		}
	})
}

// migrateContext is the work body for MigrateContext.
func (s *adminServiceImpl) migrateContext(
	ctx context.Context,
	reporter *task.Reporter,
	sourceContext, targetContext string,
) (any, error) {
	reporter.Update(0, "listing source subjects")

	subjects, err := s.registry.ListSubjects(ctx, sourceContext)
	if err != nil {
		return nil, fmt.Errorf("list subjects in %q: %w", sourceContext, err)
	}
	reporter.Update(20, fmt.Sprintf("migrating %d subjects", len(subjects)))

	phase := reporter.Phase("migrating subjects", 20, 75, len(subjects))
	migrated := 0
	failed := 0
	var failures []task.BatchFailure

	for i, subject := range subjects {
		// Cooperative cancellation between subjects.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.migrateSubject(ctx, sourceContext, targetContext, subject); err != nil {
			failed++
			if len(failures) < 10 {
				failures = append(failures, task.BatchFailure{
					Item:   subject,
					Reason: err.Error(),
				})
			}
		} else {
			migrated++
		}
		phase.UpdateItem(i)
	}
	phase.Complete()

	reporter.Update(100, "migration complete")
	return map[string]any{
		"source_context": sourceContext,
		"target_context": targetContext,
		"subjects_total": len(subjects),
		"migrated":       migrated,
		"failed":         failed,
		"failures":       failures,
	}, nil
}

// migrateSubject copies one subject's latest schema between contexts.
func (s *adminServiceImpl) migrateSubject(ctx context.Context, source, target, subject string) error {
	schema, err := s.registry.GetLatestSchema(ctx, source, subject)
	if err != nil {
		return fmt.Errorf("fetch schema: %w", err)
	}
	if _, err := s.registry.RegisterSchema(ctx, target, subject, schema); err != nil {
		return fmt.Errorf("register schema: %w", err)
	}
	return nil
}

// ExportSubjects collects every subject's latest schema into the task
// result. Fetches fan out under the configured cap.
func (s *adminServiceImpl) ExportSubjects(
	ctx context.Context,
	registryContext string,
) (task.Snapshot, error) {
	metadata := map[string]any{
		"operation": "export_subjects",
		"context":   registryContext,
	}

	return s.launch(task.TypeExport, metadata, func(reporter *task.Reporter) task.WorkFunc {
		return func(ctx context.Context) (any, error) {
			return s.exportSubjects(ctx, reporter, registryContext)
		}
	})
}

// exportSubjects is the work body for ExportSubjects.
func (s *adminServiceImpl) exportSubjects(
	ctx context.Context,
	reporter *task.Reporter,
	registryContext string,
) (any, error) {
	reporter.Update(0, "listing subjects")

	subjects, err := s.registry.ListSubjects(ctx, registryContext)
	if err != nil {
		return nil, fmt.Errorf("list subjects in %q: %w", registryContext, err)
	}
	reporter.Update(10, fmt.Sprintf("exporting %d subjects", len(subjects)))

	var mu sync.Mutex
	schemas := make([]*registry.Schema, 0, len(subjects))

	phase := reporter.Phase("exporting subjects", 10, 90, len(subjects))
	result := task.RunBatch(ctx, subjects, s.fanoutLimit,
		func(ctx context.Context, subject string) error {
			schema, err := s.registry.GetLatestSchema(ctx, registryContext, subject)
			if err != nil {
				return err
			}
			mu.Lock()
			schemas = append(schemas, schema)
			mu.Unlock()
			return nil
		},
		func(completed, total int) {
			phase.UpdateItem(completed - 1)
		})
	phase.Complete()

	return map[string]any{
		"context":  registryContext,
		"exported": result.Succeeded,
		"failed":   result.Failed,
		"failures": result.Failures,
		"schemas":  schemas,
	}, nil
}
