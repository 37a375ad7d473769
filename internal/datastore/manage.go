// manage.go: database schema management
package datastore

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/logging"
)

// performAutoMigration creates or updates the database schema for all
// persisted collections.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()
	migrationLogger := getLogger().With("db_type", dbType)

	if debug {
		migrationLogger.Debug("Starting database migration", "connection", connectionInfo)
	}

	if err := db.AutoMigrate(&List{}, &Observation{}, &CustomLocation{}); err != nil {
		return errors.Newf("failed to auto-migrate %s database: %v", dbType, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}

	migrationLogger.Debug("Database migration completed successfully",
		"total_duration", time.Since(migrationStart))

	return nil
}

var dsLogger *slog.Logger

// getLogger returns the datastore service logger, falling back to the default
// logger when logging has not been initialized (tests).
func getLogger() *slog.Logger {
	if dsLogger == nil {
		if l := logging.ForService("datastore"); l != nil {
			dsLogger = l
		} else {
			dsLogger = slog.Default().With("service", "datastore")
		}
	}
	return dsLogger
}
