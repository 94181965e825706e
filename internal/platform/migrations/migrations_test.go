package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestEmbeddedMigrationsMatchPerDialect(t *testing.T) {
	pg, err := fs.Glob(embedded, "postgres/*.sql")
	require.NoError(t, err)
	lite, err := fs.Glob(embedded, "sqlite/*.sql")
	require.NoError(t, err)

	require.NotEmpty(t, pg)
	require.Len(t, lite, len(pg), "every dialect should carry the same migrations")
	for i := range pg {
		assert.Equal(t, pg[i][len("postgres/"):], lite[i][len("sqlite/"):])
	}
}

func TestRun_SQLiteUpAndReset(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	require.NoError(t, Up(ctx, db, "sqlite", nil))
	assert.True(t, tableExists(t, db, "users"))
	assert.True(t, tableExists(t, db, "tasks"))
	assert.True(t, tableExists(t, db, TableName))

	// Applying again is a no-op.
	require.NoError(t, Up(ctx, db, "sqlite", nil))

	require.NoError(t, Run(ctx, db, "sqlite", CommandStatus, nil))

	require.NoError(t, Run(ctx, db, "sqlite", CommandReset, nil))
	assert.False(t, tableExists(t, db, "users"))
	assert.False(t, tableExists(t, db, "tasks"))
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	err := Run(ctx, db, "mysql", CommandUp, nil)
	assert.ErrorContains(t, err, "unsupported migration dialect")

	err = Run(ctx, db, "sqlite", "create", nil)
	assert.ErrorContains(t, err, "unknown migration command")
}
