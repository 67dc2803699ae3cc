package iocache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAnalysis_NoneBackend(t *testing.T) {
	_, err := MigrateAnalysis(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "migrations are not supported")
}

func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	result, err := MigrateAnalysis(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, uint(1), result.To)

	result, err = MigrateAnalysis(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Contains(t, result.String(), "already at version 1")

	result, err = MigrateAnalysis(schema.SQLiteBackend, dbPath, 0)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, uint(0), result.To)

	result, err = MigrateAnalysis(schema.SQLiteBackend, dbPath, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.To)

	// The migrated schema is the one the store writes to.
	ctx := context.Background()
	store, err := NewAnalysisStore(ctx, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Add(ctx, sampleAnalysis(t, "migrated", "Go", time.Now(), 7)))
}

func TestMigrateAnalysis_AfterStoreOpen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "existing.db")

	store, err := NewAnalysisStore(ctx, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = MigrateAnalysis(schema.SQLiteBackend, dbPath, -1)
	assert.NoError(t, err)
}

func TestMigrationFiles(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		dir, err := migrationDir(backend)
		require.NoError(t, err)
		for _, suffix := range []string{".up.sql", ".down.sql"} {
			data, err := migrationsFS.ReadFile("migrations/" + dir + "/" + initialMigration + suffix)
			require.NoError(t, err, "%s%s for %s", initialMigration, suffix, backend)
			assert.Contains(t, string(data), fileRatingsTable)
		}
	}
}
