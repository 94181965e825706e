package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open opens the database at dsn and prepares it for the stores. The pool is
// limited to one connection: SQLite serializes writers anyway and an
// in-memory database only exists on the connection that created it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

// Dialect adapts the postgres stores to SQLite.
type Dialect struct{}

var _ postgres.Dialect = Dialect{}

// Name implements postgres.Dialect.
func (Dialect) Name() string { return "sqlite" }

// Conn implements postgres.Dialect.
func (Dialect) Conn(db store.DBTX) store.DBTX {
	if c, ok := db.(*conn); ok {
		return c
	}
	return &conn{db: db}
}

// MapError implements postgres.Dialect.
func (Dialect) MapError(err error) error {
	return MapError(err)
}

// MapError maps SQLite errors to store sentinels the same way
// postgres.MapError does for PostgreSQL.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var liteErr *msqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}

	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		sqlite3.SQLITE_CONSTRAINT_CHECK,
		sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	// Without extended result codes only the primary code is set.
	if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		if strings.Contains(liteErr.Error(), "UNIQUE") {
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return err
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// Rebind rewrites PostgreSQL $N placeholders into SQLite's ?N form.
func Rebind(query string) string {
	return placeholder.ReplaceAllString(query, "?$1")
}

// conn rewrites queries before handing them to the wrapped connection or
// transaction.
type conn struct {
	db store.DBTX
}

func (c *conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, Rebind(query), args...)
}

func (c *conn) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return c.db.PrepareContext(ctx, Rebind(query))
}

func (c *conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, Rebind(query), args...)
}

func (c *conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, Rebind(query), args...)
}
