package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"tasks", "timetable", "activity_log"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// migrations are idempotent
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestTasksTable verifies the tasks table constraints
func TestTasksTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO tasks (id, parent_id, position, name, status) VALUES (?, ?, ?, ?, ?)`,
		0, nil, 0, "tasks", "open")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO tasks (id, parent_id, position, name, status) VALUES (?, ?, ?, ?, ?)`,
		1, 0, 0, "child", "wait")
	require.NoError(t, err)

	// unknown parent
	_, err = db.ExecContext(ctx,
		`INSERT INTO tasks (id, parent_id, position, name, status) VALUES (?, ?, ?, ?, ?)`,
		2, 42, 0, "orphan", "open")
	require.Error(t, err)
	require.True(t, isForeignKeyViolation(err))

	// status outside the enumeration
	_, err = db.ExecContext(ctx,
		`INSERT INTO tasks (id, parent_id, position, name, status) VALUES (?, ?, ?, ?, ?)`,
		3, 0, 1, "bad", "done")
	require.Error(t, err, "should fail with invalid status")

	// sessions cascade with their task
	_, err = db.ExecContext(ctx,
		`INSERT INTO timetable (task_id, seq, start, duration) VALUES (?, ?, ?, ?)`, 1, 0, 100, 10)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, 1)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM timetable`).Scan(&count))
	require.Zero(t, count)
}
