package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Priority is the urgency level of a task.
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is used when a task is created without one.
const DefaultPriority = PriorityMedium

// Field limits for tasks.
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 2000
)

// Common validation errors for Task
var (
	ErrEmptyTaskOwner         = errors.New("task owner ID cannot be empty")
	ErrEmptyTaskTitle         = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong       = errors.New("task title must be at most 200 characters long")
	ErrTaskDescriptionTooLong = errors.New("task description must be at most 2000 characters long")
	ErrInvalidPriority        = errors.New("priority must be one of low, medium, high")
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts a string into a Priority, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    Priority  `json:"priority"`
	DueDate     *Date     `json:"due_date"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a new, not yet completed Task for ownerID.
// An empty priority defaults to medium. The ID is assigned by the store.
func NewTask(ownerID int64, title string, description *string, priority Priority, dueDate *Date) (*Task, error) {
	if priority == "" {
		priority = DefaultPriority
	}

	now := time.Now().UTC()
	task := &Task{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.OwnerID <= 0 {
		return NewValidationError("owner_id", "is required", ErrEmptyTaskOwner)
	}
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if t.Description != nil {
		if err := validateDescription(*t.Description); err != nil {
			return err
		}
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high", ErrInvalidPriority)
	}
	return nil
}

// IsOverdue reports whether the task is still open and its due date is
// before today.
func (t *Task) IsOverdue(today Date) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(today)
}

// TaskPatch is a partial update. Nil fields are left unchanged. The Clear
// flags null out optional fields and take precedence over the value fields.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Priority         *Priority
	DueDate          *Date
	ClearDueDate     bool
	Completed        *bool
}

// Validate checks every field the patch sets.
func (p *TaskPatch) Validate() error {
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		p.Title = &trimmed
		if err := validateTitle(trimmed); err != nil {
			return err
		}
	}
	if p.Description != nil && !p.ClearDescription {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high", ErrInvalidPriority)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p *TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && !p.ClearDescription &&
		p.Priority == nil && p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// Apply copies the patch onto t and bumps UpdatedAt.
func (p *TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	switch {
	case p.ClearDescription:
		t.Description = nil
	case p.Description != nil:
		desc := *p.Description
		t.Description = &desc
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = now.UTC()
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "is required", ErrEmptyTaskTitle)
	}
	if utf8.RuneCountInString(title) > MaxTaskTitleLength {
		return NewValidationError("title", "is too long", ErrTaskTitleTooLong)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxTaskDescriptionLength {
		return NewValidationError("description", "is too long", ErrTaskDescriptionTooLong)
	}
	return nil
}
