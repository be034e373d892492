package services

import (
	"database/sql"
	"testing"

	"crestmont/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// newTestDB opens an isolated in-memory database with the full schema.
// MaxOpenConns(1) keeps every query on the single connection that holds the
// in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm connection: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}
