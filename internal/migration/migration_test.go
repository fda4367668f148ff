package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mapFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(nil), SQLite)

	v, err := runner.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"002_second.sql": "SELECT 1;",
		"001_first.sql":  "SELECT 1;",
		"README.md":      "ignored",
	}), SQLite)

	migrations, err := runner.ReadMigrationFiles()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestApplyMigrationsFromScratch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_kv.sql":    "CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL);",
		"002_index.sql": "CREATE INDEX idx_kv_value ON kv(value);",
	}), SQLite)

	var logs []string
	applied, err := runner.ApplyMigrations(ctx, func(s string) { logs = append(logs, s) })
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.NotEmpty(t, logs)

	v, err := runner.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = db.Exec("INSERT INTO kv (key, value) VALUES ('a', 'b')")
	assert.NoError(t, err)
}

func TestApplyMigrationsIncrementalAndNoOp(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	files := map[string]string{"001_kv.sql": "CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL);"}

	applied, err := NewRunner(db, mapFS(files), SQLite).ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	files["002_meta.sql"] = "CREATE TABLE meta (k TEXT);"
	applied, err = NewRunner(db, mapFS(files), SQLite).ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = NewRunner(db, mapFS(files), SQLite).ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
}

func TestMigrationRollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER; -- syntax error",
	}), SQLite)

	applied, err := runner.ApplyMigrations(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, 1, applied)

	v, err := runner.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{"001_a.sql": "SELECT 1;"}), SQLite)

	require.NoError(t, runner.EnsureSchemaVersionTable(ctx))
	_, err := db.Exec("INSERT INTO schema_version (version) VALUES (5)")
	require.NoError(t, err)

	err = runner.ValidateVersion(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")

	_, err = runner.ApplyMigrations(ctx, nil)
	assert.Error(t, err)
}

func TestLatestVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_a.sql": "SELECT 1;",
		"007_b.sql": "SELECT 1;",
	}), SQLite)

	v, err := runner.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInvalidMigrationFiles(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "missing underscore", files: map[string]string{"001.sql": "SELECT 1;"}},
		{name: "non numeric version", files: map[string]string{"abc_init.sql": "SELECT 1;"}},
		{name: "zero version", files: map[string]string{"000_init.sql": "SELECT 1;"}},
		{name: "duplicate version", files: map[string]string{"001_a.sql": "SELECT 1;", "001_b.sql": "SELECT 1;"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(setupTestDB(t), mapFS(tt.files), SQLite).ReadMigrationFiles()
			assert.Error(t, err)
		})
	}
}

func TestDialectPlaceholder(t *testing.T) {
	assert.Equal(t, "?", SQLite.placeholder(1))
	assert.Equal(t, "$1", Postgres.placeholder(1))
	assert.Equal(t, "postgres", Postgres.String())
}
