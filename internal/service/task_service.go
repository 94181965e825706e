package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
)

// NewTaskInput carries the caller-supplied fields of a task to create.
type NewTaskInput struct {
	Title       string
	Description *string
	Priority    domain.Priority
	DueDate     *domain.Date
}

// TaskService provides owner-scoped task operations.
// Every method treats a task owned by someone else as store.ErrTaskNotFound.
type TaskService interface {
	// ListTasks returns the owner's tasks in creation order.
	ListTasks(ctx context.Context, ownerID int64, filter store.TaskFilter) ([]*domain.Task, error)

	// CreateTask validates and stores a new task for ownerID.
	CreateTask(ctx context.Context, ownerID int64, in NewTaskInput) (*domain.Task, error)

	// GetTask retrieves one of the owner's tasks.
	GetTask(ctx context.Context, ownerID, taskID int64) (*domain.Task, error)

	// UpdateTask validates and applies a partial update.
	UpdateTask(ctx context.Context, ownerID, taskID int64, patch domain.TaskPatch) (*domain.Task, error)

	// CompleteTask marks the task completed and leaves every other field alone.
	CompleteTask(ctx context.Context, ownerID, taskID int64) (*domain.Task, error)

	// DeleteTask removes one of the owner's tasks.
	DeleteTask(ctx context.Context, ownerID, taskID int64) error

	// ListOverdue returns open tasks whose due date is before today (UTC).
	ListOverdue(ctx context.Context, ownerID int64, limit, offset int) ([]*domain.Task, error)
}

// TaskServiceOption configures a task service.
type TaskServiceOption func(*taskServiceImpl)

// WithClock overrides the clock used to decide what is overdue.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) {
		s.now = now
	}
}

type taskServiceImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if taskStore is nil.
func NewTaskService(
	taskStore store.TaskStore,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if taskStore == nil {
		return nil, &ServiceError{
			Service:   "task",
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		taskStore: taskStore,
		logger:    logger.With("component", "task_service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// log prefers the request-scoped logger so entries carry trace_id.
func (s *taskServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID int64,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	if ownerID <= 0 {
		return nil, ErrMissingOwner
	}

	tasks, err := s.taskStore.List(ctx, ownerID, filter)
	if err != nil {
		s.log(ctx).Error("failed to list tasks",
			"error", redact.Error(err),
			"owner_id", ownerID)
		return nil, newServiceError("task", "list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID int64,
	in NewTaskInput,
) (*domain.Task, error) {
	if ownerID <= 0 {
		return nil, ErrMissingOwner
	}

	task, err := domain.NewTask(ownerID, in.Title, in.Description, in.Priority, in.DueDate)
	if err != nil {
		s.log(ctx).Debug("rejected invalid task",
			"error", redact.Error(err),
			"owner_id", ownerID)
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		s.log(ctx).Error("failed to save task",
			"error", redact.Error(err),
			"owner_id", ownerID)
		return nil, newServiceError("task", "create_task", "failed to save task", err)
	}

	s.log(ctx).Info("task created",
		"task_id", task.ID,
		"owner_id", ownerID)
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID int64) (*domain.Task, error) {
	if ownerID <= 0 {
		return nil, ErrMissingOwner
	}

	task, err := s.taskStore.Get(ctx, ownerID, taskID)
	if err != nil {
		s.logLookupError(ctx, "failed to retrieve task", err, ownerID, taskID)
		return nil, newServiceError("task", "get_task", "failed to retrieve task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	ownerID, taskID int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if ownerID <= 0 {
		return nil, ErrMissingOwner
	}

	// Validate before touching the store so bad input never reaches SQL.
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.GetTask(ctx, ownerID, taskID)
	}

	task, err := s.taskStore.Update(ctx, ownerID, taskID, patch)
	if err != nil {
		s.logLookupError(ctx, "failed to update task", err, ownerID, taskID)
		return nil, newServiceError("task", "update_task", "failed to update task", err)
	}

	s.log(ctx).Debug("task updated",
		"task_id", taskID,
		"owner_id", ownerID)
	return task, nil
}

func (s *taskServiceImpl) CompleteTask(ctx context.Context, ownerID, taskID int64) (*domain.Task, error) {
	completed := true
	return s.UpdateTask(ctx, ownerID, taskID, domain.TaskPatch{Completed: &completed})
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID int64) error {
	if ownerID <= 0 {
		return ErrMissingOwner
	}

	if err := s.taskStore.Delete(ctx, ownerID, taskID); err != nil {
		s.logLookupError(ctx, "failed to delete task", err, ownerID, taskID)
		return newServiceError("task", "delete_task", "failed to delete task", err)
	}

	s.log(ctx).Info("task deleted",
		"task_id", taskID,
		"owner_id", ownerID)
	return nil
}

func (s *taskServiceImpl) ListOverdue(
	ctx context.Context,
	ownerID int64,
	limit, offset int,
) ([]*domain.Task, error) {
	today := domain.DateOf(s.now().UTC())
	tasks, err := s.ListTasks(ctx, ownerID, store.TaskFilter{
		OverdueAsOf: &today,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	return tasks, nil
}

// logLookupError logs misses at DEBUG and everything else at ERROR.
func (s *taskServiceImpl) logLookupError(ctx context.Context, msg string, err error, ownerID, taskID int64) {
	level := slog.LevelError
	if errors.Is(err, store.ErrTaskNotFound) {
		level = slog.LevelDebug
	}
	s.log(ctx).Log(ctx, level, msg,
		"error", redact.Error(err),
		"task_id", taskID,
		"owner_id", ownerID)
}
