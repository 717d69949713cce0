package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/migrations"
)

// OpenSQLite returns a migrated database backed by a temporary SQLite file.
// The connection is closed when the test finishes.
func OpenSQLite(tb testing.TB) *db.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "autazul.db")
	database, err := db.Open(db.DriverSQLite, "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	tb.Cleanup(func() {
		_ = database.Close()
	})

	if err := migrations.Apply(context.Background(), database); err != nil {
		tb.Fatalf("failed to migrate sqlite: %v", err)
	}
	return database
}
