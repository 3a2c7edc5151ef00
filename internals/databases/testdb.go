package database

import (
	"testing"

	"gorm.io/gorm"
)

// OpenTestDB membuka sqlite in-memory yang sudah dimigrasi, khusus test.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", SQLiteDSN("file::memory:"), true)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	return db
}
