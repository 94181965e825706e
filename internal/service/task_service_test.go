package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func ptr[T any](v T) *T { return &v }

func newTaskService(t *testing.T, taskStore store.TaskStore, opts ...service.TaskServiceOption) service.TaskService {
	t.Helper()
	svc, err := service.NewTaskService(taskStore, testLogger, opts...)
	require.NoError(t, err)
	return svc
}

func TestNewTaskService_NilStore(t *testing.T) {
	svc, err := service.NewTaskService(nil, testLogger)
	require.Error(t, err)
	assert.Nil(t, svc)

	var svcErr *service.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "create_service", svcErr.Operation)
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		svc := newTaskService(t, mocks.NewMockTaskStore())

		task, err := svc.CreateTask(ctx, 1, service.NewTaskInput{Title: "  buy milk  "})
		require.NoError(t, err)
		assert.Equal(t, int64(1), task.ID)
		assert.Equal(t, int64(1), task.OwnerID)
		assert.Equal(t, "buy milk", task.Title)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.False(t, task.Completed)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.DueDate)
	})

	t.Run("validation error never reaches the store", func(t *testing.T) {
		taskStore := new(mocks.TestifyMockTaskStore)
		svc := newTaskService(t, taskStore)

		_, err := svc.CreateTask(ctx, 1, service.NewTaskInput{Title: "   "})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.True(t, errors.Is(err, domain.ErrEmptyTaskTitle))
		taskStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid priority", func(t *testing.T) {
		svc := newTaskService(t, mocks.NewMockTaskStore())

		_, err := svc.CreateTask(ctx, 1, service.NewTaskInput{Title: "x", Priority: "urgent"})
		assert.True(t, errors.Is(err, domain.ErrInvalidPriority))
	})

	t.Run("missing owner", func(t *testing.T) {
		svc := newTaskService(t, mocks.NewMockTaskStore())

		_, err := svc.CreateTask(ctx, 0, service.NewTaskInput{Title: "x"})
		assert.ErrorIs(t, err, service.ErrMissingOwner)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		taskStore := new(mocks.TestifyMockTaskStore)
		dbErr := errors.New("connection reset")
		taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(dbErr)
		svc := newTaskService(t, taskStore)

		_, err := svc.CreateTask(ctx, 1, service.NewTaskInput{Title: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)

		var svcErr *service.ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, "create_task", svcErr.Operation)
		taskStore.AssertExpectations(t)
	})
}

func TestTaskService_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t, mocks.NewMockTaskStore())

	task, err := svc.CreateTask(ctx, 1, service.NewTaskInput{Title: "mine"})
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, 2, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.UpdateTask(ctx, 2, task.ID, domain.TaskPatch{Title: ptr("stolen")})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.CompleteTask(ctx, 2, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	assert.ErrorIs(t, svc.DeleteTask(ctx, 2, task.ID), store.ErrTaskNotFound)

	others, err := svc.ListTasks(ctx, 2, store.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, others)

	got, err := svc.GetTask(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc := newTaskService(t, mocks.NewMockTaskStore())
		due := domain.NewDate(2030, time.January, 2)
		created, err := svc.CreateTask(ctx, 1, service.NewTaskInput{
			Title:       "buy milk",
			Description: ptr("2 liters"),
			Priority:    domain.PriorityHigh,
			DueDate:     &due,
		})
		require.NoError(t, err)

		updated, err := svc.UpdateTask(ctx, 1, created.ID, domain.TaskPatch{Title: ptr("buy oat milk")})
		require.NoError(t, err)
		assert.Equal(t, "buy oat milk", updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "2 liters", *updated.Description)
		assert.Equal(t, domain.PriorityHigh, updated.Priority)
		require.NotNil(t, updated.DueDate)
		assert.Equal(t, due, *updated.DueDate)
	})

	t.Run("clear flags null out fields", func(t *testing.T) {
		svc := newTaskService(t, mocks.NewMockTaskStore())
		due := domain.NewDate(2030, time.January, 2)
		created, err := svc.CreateTask(ctx, 1, service.NewTaskInput{
			Title:       "x",
			Description: ptr("d"),
			DueDate:     &due,
		})
		require.NoError(t, err)

		updated, err := svc.UpdateTask(ctx, 1, created.ID, domain.TaskPatch{
			ClearDescription: true,
			ClearDueDate:     true,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.Description)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("invalid patch is rejected before the store", func(t *testing.T) {
		taskStore := new(mocks.TestifyMockTaskStore)
		svc := newTaskService(t, taskStore)

		_, err := svc.UpdateTask(ctx, 1, 1, domain.TaskPatch{Title: ptr("")})
		assert.ErrorIs(t, err, domain.ErrValidation)

		bad := domain.Priority("urgent")
		_, err = svc.UpdateTask(ctx, 1, 1, domain.TaskPatch{Priority: &bad})
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)

		taskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty patch reads without writing", func(t *testing.T) {
		taskStore := new(mocks.TestifyMockTaskStore)
		svc := newTaskService(t, taskStore)

		existing := &domain.Task{ID: 7, OwnerID: 1, Title: "keep", Priority: domain.PriorityLow}
		taskStore.On("Get", mock.Anything, int64(1), int64(7)).Return(existing, nil)

		got, err := svc.UpdateTask(ctx, 1, 7, domain.TaskPatch{})
		require.NoError(t, err)
		assert.Equal(t, existing, got)

		taskStore.AssertExpectations(t)
		taskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTaskService(t, mocks.NewMockTaskStore())

		_, err := svc.UpdateTask(ctx, 1, 99, domain.TaskPatch{Title: ptr("x")})
		assert.Equal(t, store.ErrTaskNotFound, err)
	})
}

func TestTaskService_CompleteTask(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t, mocks.NewMockTaskStore())

	created, err := svc.CreateTask(ctx, 1, service.NewTaskInput{
		Title:       "buy milk",
		Description: ptr("2 liters"),
		Priority:    domain.PriorityLow,
	})
	require.NoError(t, err)

	done, err := svc.CompleteTask(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, created.Title, done.Title)
	assert.Equal(t, created.Description, done.Description)
	assert.Equal(t, created.Priority, done.Priority)
	assert.Equal(t, created.CreatedAt, done.CreatedAt)
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t, mocks.NewMockTaskStore())

	created, err := svc.CreateTask(ctx, 1, service.NewTaskInput{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, 1, created.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, 1, created.ID), store.ErrTaskNotFound)

	_, err = svc.GetTask(ctx, 1, created.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t, mocks.NewMockTaskStore())

	for _, in := range []service.NewTaskInput{
		{Title: "a", Priority: domain.PriorityHigh},
		{Title: "b", Priority: domain.PriorityLow},
		{Title: "c", Priority: domain.PriorityHigh},
	} {
		_, err := svc.CreateTask(ctx, 1, in)
		require.NoError(t, err)
	}
	_, err := svc.CompleteTask(ctx, 1, 3)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter store.TaskFilter
		want   []string
	}{
		{name: "all in creation order", filter: store.TaskFilter{}, want: []string{"a", "b", "c"}},
		{name: "completed", filter: store.TaskFilter{Completed: ptr(true)}, want: []string{"c"}},
		{name: "open", filter: store.TaskFilter{Completed: ptr(false)}, want: []string{"a", "b"}},
		{name: "high priority", filter: store.TaskFilter{Priority: ptr(domain.PriorityHigh)}, want: []string{"a", "c"}},
		{name: "limit", filter: store.TaskFilter{Limit: 2}, want: []string{"a", "b"}},
		{name: "offset", filter: store.TaskFilter{Offset: 1}, want: []string{"b", "c"}},
		{name: "offset past end", filter: store.TaskFilter{Offset: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.ListTasks(ctx, 1, tt.filter)
			require.NoError(t, err)

			titles := make([]string, 0, len(tasks))
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestTaskService_ListOverdue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, time.March, 10, 15, 0, 0, 0, time.UTC)
	svc := newTaskService(t, mocks.NewMockTaskStore(), service.WithClock(func() time.Time { return now }))

	yesterday := domain.NewDate(2030, time.March, 9)
	today := domain.NewDate(2030, time.March, 10)

	inputs := []service.NewTaskInput{
		{Title: "late", DueDate: &yesterday},
		{Title: "due today", DueDate: &today},
		{Title: "no due date"},
		{Title: "late but done", DueDate: &yesterday},
	}
	for _, in := range inputs {
		_, err := svc.CreateTask(ctx, 1, in)
		require.NoError(t, err)
	}
	_, err := svc.CompleteTask(ctx, 1, 4)
	require.NoError(t, err)

	tasks, err := svc.ListOverdue(ctx, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "late", tasks[0].Title)
}

func TestTaskService_StoreErrors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("disk full")

	taskStore := &mocks.MockTaskStore{Err: dbErr}
	svc := newTaskService(t, taskStore)

	_, err := svc.ListTasks(ctx, 1, store.TaskFilter{})
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.GetTask(ctx, 1, 1)
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.ListOverdue(ctx, 1, 0, 0)
	assert.ErrorIs(t, err, dbErr)

	assert.ErrorIs(t, svc.DeleteTask(ctx, 1, 1), dbErr)
}
