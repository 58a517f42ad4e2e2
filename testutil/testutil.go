package testutil

import (
	"os"
	"testing"

	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens a migrated in-memory SQLite database and installs it as the application database.
// The connection is closed and config.GetDB reset when the test ends.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(nil)
		_ = sqlDB.Close()
	})
	return db
}

// RequireTestEnvironment fails the test unless GO_ENV is "test".
// Use it before touching any database that is not OpenDB's.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}
