package testutil

import (
	"database/sql"
	"strings"
	"testing"

	"todoPlanManagement/internal/db"
)

// OpenInMemoryDB opens a fresh in-memory store named after the test and applies migrations.
// The DB is closed via t.Cleanup, which also discards its contents.
func OpenInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	d, err := db.Open("test_" + name)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}
