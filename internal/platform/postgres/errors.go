package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/tasks-api/internal/store"
)

// constraintErrors maps PostgreSQL SQLSTATE codes to store sentinels.
var constraintErrors = map[string]struct {
	sentinel error
	kind     string
}{
	"23505": {store.ErrDuplicate, "unique violation"},
	"23503": {store.ErrInvalidEntity, "foreign key violation"},
	"23514": {store.ErrInvalidEntity, "check constraint violation"},
	"23502": {store.ErrInvalidEntity, "not null violation"},
}

// MapError maps a database error to the matching store sentinel, keeping the
// driver error in the chain for logs. The API layer never shows the wrapped
// text to clients. Unknown errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	mapping, ok := constraintErrors[pgErr.Code]
	if !ok {
		return err
	}

	target := pgErr.ConstraintName
	if target == "" {
		target = pgErr.ColumnName
	}
	return fmt.Errorf("%w: %s (%s): %v", mapping.sentinel, mapping.kind, target, err)
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE touched no
// rows. A nil notFound means store.ErrNotFound.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound == nil {
		return store.ErrNotFound
	}
	return notFound
}
