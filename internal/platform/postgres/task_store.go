package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

const taskColumns = `id, owner_id, title, description, priority, due_date, completed, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger, opts ...Option) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := applyOptions(opts)
	return &PostgresTaskStore{
		db:      o.dialect.Conn(db),
		dialect: o.dialect,
		logger:  logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a store that runs its statements inside tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:      s.dialect.Conn(tx),
		dialect: s.dialect,
		logger:  s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		priority    string
		dueDate     domain.Date
	)
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&description,
		&priority,
		&dueDate,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	if description.Valid {
		task.Description = &description.String
	}
	if !dueDate.IsZero() {
		task.DueDate = &dueDate
	}
	return &task, nil
}

// nullableString converts an optional string into a driver value.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nullableDate converts an optional date into a driver value.
func nullableDate(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

// List implements store.TaskStore.List.
// Tasks come back in creation order (ascending id).
func (s *PostgresTaskStore) List(
	ctx context.Context,
	ownerID int64,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	conds := []string{"owner_id = $1"}
	args := []any{ownerID}
	where := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if filter.Completed != nil {
		where("completed = $%d", *filter.Completed)
	}
	if filter.Priority != nil {
		where("priority = $%d", string(*filter.Priority))
	}
	if filter.OverdueAsOf != nil {
		conds = append(conds, "completed = FALSE", "due_date IS NOT NULL")
		where("due_date < $%d", filter.OverdueAsOf.Time())
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, filter.EffectiveLimit(), offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY id ASC
		LIMIT $%d OFFSET $%d
	`, taskColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, store.NewStoreError("task", "list", "failed to list tasks", s.dialect.MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to iterate tasks", err)
	}

	log.Debug("listed tasks",
		slog.Int64("owner_id", ownerID),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Create implements store.TaskStore.Create
// It validates the task, inserts it and sets task.ID.
// Returns store.ErrInvalidEntity if the owner doesn't exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return err
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	query := `
		INSERT INTO tasks (owner_id, title, description, priority, due_date, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.OwnerID,
		task.Title,
		nullableString(task.Description),
		string(task.Priority),
		nullableDate(task.DueDate),
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&id)
	if err != nil {
		mapped := s.dialect.MapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			log.Warn("constraint violation during task creation",
				slog.String("error", err.Error()),
				slog.Int64("owner_id", task.OwnerID))
			return fmt.Errorf("%w: owner %d cannot hold this task", store.ErrInvalidEntity, task.OwnerID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return store.NewStoreError("task", "create", "failed to create task", mapped)
	}

	task.ID = id
	log.Info("task created successfully",
		slog.Int64("task_id", id),
		slog.Int64("owner_id", task.OwnerID))
	return nil
}

// Get implements store.TaskStore.Get
func (s *PostgresTaskStore) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, s.notFoundOr(log, err, "get", ownerID, id)
	}
	return task, nil
}

// Update implements store.TaskStore.Update.
// Only the fields set in patch change; updated_at is always bumped.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	ownerID, id int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		log.Warn("task patch validation failed",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	switch {
	case patch.ClearDescription:
		set("description", nil)
	case patch.Description != nil:
		set("description", *patch.Description)
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	switch {
	case patch.ClearDueDate:
		set("due_date", nil)
	case patch.DueDate != nil:
		set("due_date", patch.DueDate.Time())
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args)-1, len(args), taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, s.notFoundOr(log, err, "update", ownerID, id)
	}

	log.Info("task updated successfully",
		slog.Int64("task_id", id),
		slog.Int64("owner_id", ownerID))
	return task, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "failed to delete task", s.dialect.MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("task not found for delete", slog.Int64("task_id", id))
		}
		return err
	}

	log.Info("task deleted successfully",
		slog.Int64("task_id", id),
		slog.Int64("owner_id", ownerID))
	return nil
}

// notFoundOr turns sql.ErrNoRows into store.ErrTaskNotFound and wraps
// anything else in a StoreError.
func (s *PostgresTaskStore) notFoundOr(log *slog.Logger, err error, op string, ownerID, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("task not found",
			slog.String("operation", op),
			slog.Int64("task_id", id),
			slog.Int64("owner_id", ownerID))
		return store.ErrTaskNotFound
	}
	log.Error("task query failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
		slog.Int64("task_id", id))
	return store.NewStoreError("task", op, "failed to "+op+" task", s.dialect.MapError(err))
}
