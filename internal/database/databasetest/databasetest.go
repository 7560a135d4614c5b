// Package databasetest opens migrated in-memory databases for tests.
package databasetest

import (
	"fmt"
	"testing"

	"go-workforce/internal/database"
	"go-workforce/internal/shared/connection"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New returns a fresh migrated sqlite database private to the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := connection.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
