package db

import (
	"fmt"

	"backsync/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the run-history database and migrates its schema. The handle
// is injected into repositories; there is no package-level connection.
func Open(dbPath string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := gdb.AutoMigrate(&model.Run{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return gdb, nil
}
