package store

import (
	"context"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// Pagination bounds for task listings.
const (
	DefaultTaskLimit = 20
	MaxTaskLimit     = 100
)

// TaskFilter narrows a task listing. Zero values mean "no filter".
type TaskFilter struct {
	Completed *bool
	Priority  *domain.Priority
	// OverdueAsOf selects open tasks whose due date is before this day.
	OverdueAsOf *domain.Date
	Limit       int
	Offset      int
}

// EffectiveLimit clamps Limit into [1, MaxTaskLimit], defaulting to DefaultTaskLimit.
func (f TaskFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultTaskLimit
	case f.Limit > MaxTaskLimit:
		return MaxTaskLimit
	}
	return f.Limit
}

// TaskStore defines the interface for task persistence.
// Every method is scoped by ownerID; a task owned by anyone else is
// reported as ErrTaskNotFound.
type TaskStore interface {
	// List returns the owner's tasks in creation order.
	List(ctx context.Context, ownerID int64, filter TaskFilter) ([]*domain.Task, error)

	// Create saves a new task and sets task.ID.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// Get retrieves a single task.
	// Returns ErrTaskNotFound if the task does not exist or is not owned by ownerID.
	Get(ctx context.Context, ownerID, id int64) (*domain.Task, error)

	// Update applies a partial update and returns the stored result.
	// Returns ErrTaskNotFound if the task does not exist or is not owned by ownerID.
	Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist or is not owned by ownerID.
	Delete(ctx context.Context, ownerID, id int64) error
}
