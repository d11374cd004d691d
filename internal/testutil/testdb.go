package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/timesheet/internal/db"
)

// NewTestDB opens an in-memory store with the schema applied. It is closed
// when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewTestDBFile opens a store in a file under t.TempDir and returns its
// path so a test can reopen it the way a later CLI invocation would.
func NewTestDBFile(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timesheet", "timesheet.db")
	return openTestDB(t, path), path
}

// ReopenTestDB opens an existing store file again.
func ReopenTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	return openTestDB(t, path)
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("opening test database %s: %v", path, err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}
