// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/database"
)

// New opens a fresh SQLite database under t.TempDir() and migrates the
// given models. A single connection is used so writers never contend.
func New(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if len(models) > 0 {
		if err := database.AutoMigrate(db, models...); err != nil {
			t.Fatalf("failed to migrate test database: %v", err)
		}
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
