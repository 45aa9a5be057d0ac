package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	d, err := Open(ctx, Options{Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	assert.Equal(t, dbPath, d.Path())

	version, err := SchemaVersionOf(ctx, d.SQL())
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	d, err := Open(ctx, Options{Path: dbPath})
	require.NoError(t, err)
	d.Close()
}

func TestRunMigrations_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d, err := Open(ctx, Options{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	// Re-running against an up-to-date database is a no-op.
	require.NoError(t, RunMigrations(ctx, d.SQL()))

	version, err := SchemaVersionOf(ctx, d.SQL())
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestRunMigrations_RefusesNewerSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d, err := Open(ctx, Options{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	_, err = d.SQL().ExecContext(ctx, `
		INSERT INTO schema_migrations (version, applied_ms) VALUES (?, ?)
	`, SchemaVersion+10, time.Now().UnixMilli())
	require.NoError(t, err)

	err = RunMigrations(ctx, d.SQL())
	assert.ErrorIs(t, err, ErrSchemaVersionTooNew)
}

func TestSchema_PendingUniqueIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d, err := Open(ctx, Options{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	insert := `
		INSERT INTO adjustment_suggestion
			(id, suggestion_type, recipe_id, recipe_name, reason, feedback_count, status, created_at_ms)
		VALUES (?, 'portion', 'r1', 'Feijoada', 'test', 3, ?, ?)
	`
	now := time.Now().UnixMilli()

	_, err = d.SQL().ExecContext(ctx, insert, "s1", "pending", now)
	require.NoError(t, err)

	// Second pending row for the same (recipe, type) violates the index.
	_, err = d.SQL().ExecContext(ctx, insert, "s2", "pending", now)
	require.Error(t, err)

	// Terminal rows do not participate in the partial index.
	_, err = d.SQL().ExecContext(ctx, insert, "s3", "dismissed", now)
	require.NoError(t, err)
	_, err = d.SQL().ExecContext(ctx, insert, "s4", "applied", now)
	require.NoError(t, err)
}
