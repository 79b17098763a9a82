// Package data implements the account storage layer behind the credential
// check collaborator.
package data

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string, debug bool) (*gorm.DB, error) {
	log := logger.Default.LogMode(logger.Error)
	if debug {
		log = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&Account{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

// Shutdown closes the underlying database connection.
func Shutdown(db *gorm.DB) error {
	database, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting current connection: %w", err)
	}
	if err := database.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}
