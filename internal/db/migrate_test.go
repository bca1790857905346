package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time; it must be a no-op.
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesDocumentsTable(t *testing.T) {
	db := openTestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='documents'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "documents", name)

	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_documents_updated_at'`).Scan(&name)
	require.NoError(t, err)
}

func TestMigrate_RejectsInvalidBody(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO documents (collection, id, body, updated_at) VALUES ('tasks', 1, 'not json', '')`)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO documents (collection, id, body, updated_at) VALUES ('tasks', 0, '{}', '')`)
	assert.Error(t, err)
}

func TestStatus_UpToDate(t *testing.T) {
	db := openTestDB(t)

	status, err := Status(db)
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.CurrentVersion)
	assert.Equal(t, uint(2), status.LatestVersion)
	assert.False(t, status.Dirty)
	assert.False(t, status.Pending)
}

func TestOpenDB_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "polylearner.db")

	db, err := OpenDB(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO documents (collection, id, body, updated_at) VALUES ('tasks', 1, '{"id":1}', '')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n))
	assert.Equal(t, 1, n)
}
