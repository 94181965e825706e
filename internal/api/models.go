package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID int64 `json:"user_id"`

	// Token is the JWT used for API authorization
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
}

// Optional records whether a JSON field was present, and whether it was null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for fields
// present in the document, including explicit nulls.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// UpdateTaskRequest is a partial update. Absent fields are left unchanged;
// an explicit null clears description and due_date.
type UpdateTaskRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Priority    Optional[string] `json:"priority"`
	DueDate     Optional[string] `json:"due_date"`
	Completed   Optional[bool]   `json:"completed"`
}

// ToPatch converts the request into a domain patch, rejecting nulls for
// required fields and unparseable values.
func (req UpdateTaskRequest) ToPatch() (domain.TaskPatch, error) {
	var patch domain.TaskPatch

	if req.Title.Set {
		if req.Title.Null {
			return patch, domain.NewValidationError("title", "cannot be null", domain.ErrEmptyTaskTitle)
		}
		title := req.Title.Value
		patch.Title = &title
	}

	if req.Description.Set {
		if req.Description.Null {
			patch.ClearDescription = true
		} else {
			desc := req.Description.Value
			patch.Description = &desc
		}
	}

	if req.Priority.Set {
		if req.Priority.Null {
			return patch, domain.NewValidationError("priority", "cannot be null", domain.ErrInvalidPriority)
		}
		p, err := domain.ParsePriority(req.Priority.Value)
		if err != nil {
			return patch, domain.NewValidationError("priority", "must be one of low, medium, high", err)
		}
		patch.Priority = &p
	}

	if req.DueDate.Set {
		if req.DueDate.Null {
			patch.ClearDueDate = true
		} else {
			due, err := parseDueDate(req.DueDate.Value)
			if err != nil {
				return patch, err
			}
			patch.DueDate = &due
		}
	}

	if req.Completed.Set {
		if req.Completed.Null {
			return patch, domain.NewValidationError("completed", "cannot be null", domain.ErrInvalidFormat)
		}
		completed := req.Completed.Value
		patch.Completed = &completed
	}

	return patch, nil
}

// TaskResponse is the wire form of a task.
type TaskResponse struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    string    `json:"priority"`
	DueDate     *string   `json:"due_date"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.DueDate != nil {
		due := task.DueDate.String()
		resp.DueDate = &due
	}
	return resp
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	resp := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, taskToResponse(task))
	}
	return resp
}

func parseDueDate(s string) (domain.Date, error) {
	due, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, domain.NewValidationError("due_date", "must be a date (YYYY-MM-DD)", err)
	}
	return due, nil
}
