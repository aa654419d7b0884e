package database

import (
	"gorm.io/gorm"

	"github.com/rapidcart/catalog/internal/models"
)

// AutoMigrate creates or updates the schema for all models. Re-running it
// against an already-initialised database is a no-op.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Record{},
		&models.CacheEntry{},
		&models.EventLog{},
	)
}
