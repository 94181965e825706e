package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/migrations"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/sqlite"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testDatabaseURLEnv points the store tests at a real PostgreSQL server.
// Without it they run against in-memory SQLite.
const testDatabaseURLEnv = "TASKS_TEST_DATABASE_URL"

// testTimeout is the maximum time allowed for a test to run
const testTimeout = 5 * time.Second

var (
	pgOnce sync.Once
	pgDB   *sql.DB
	pgErr  error
)

var usernameSeq atomic.Int64

type testStores struct {
	users *postgres.PostgresUserStore
	tasks *postgres.PostgresTaskStore
	db    store.DBTX
}

// newTestStores returns stores on an isolated database: a fresh in-memory
// SQLite database, or a transaction rolled back at cleanup for PostgreSQL.
func newTestStores(t *testing.T) testStores {
	t.Helper()

	if url := os.Getenv(testDatabaseURLEnv); url != "" {
		db := sharedPostgres(t, url)
		tx, err := db.BeginTx(context.Background(), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = tx.Rollback() })
		return testStores{
			users: postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil),
			tasks: postgres.NewPostgresTaskStore(tx, nil),
			db:    tx,
		}
	}

	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, "sqlite", nil))

	opt := postgres.WithDialect(sqlite.Dialect{})
	return testStores{
		users: postgres.NewPostgresUserStore(db, bcrypt.MinCost, nil, opt),
		tasks: postgres.NewPostgresTaskStore(db, nil, opt),
		db:    sqlite.Dialect{}.Conn(db),
	}
}

func sharedPostgres(t *testing.T, url string) *sql.DB {
	t.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = sql.Open("pgx", url)
		if pgErr != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		if pgErr = pgDB.PingContext(ctx); pgErr != nil {
			return
		}
		pgErr = migrations.Up(ctx, pgDB, "postgres", nil)
	})
	require.NoError(t, pgErr, "failed to prepare PostgreSQL test database")
	return pgDB
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

// uniqueUsername keeps usernames distinct across tests sharing a database.
func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano()%1_000_000, usernameSeq.Add(1))
}

func createTestUser(t *testing.T, ctx context.Context, users store.UserStore) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uniqueUsername("user"), "password123")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))
	return user
}

func createTestTask(
	t *testing.T,
	ctx context.Context,
	tasks store.TaskStore,
	ownerID int64,
	title string,
	priority domain.Priority,
	due *domain.Date,
) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, title, nil, priority, due)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(ctx, task))
	return task
}

func ptr[T any](v T) *T { return &v }
