package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// NewTestStore returns a SQLite-backed document store over a fresh database.
func NewTestStore(t *testing.T) (*docstore.SQLiteStore, *sql.DB) {
	t.Helper()
	database := NewTestDB(t)
	return docstore.NewSQLiteStore(database), database
}

// DiscardLogger is a logger for components whose output a test ignores.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
