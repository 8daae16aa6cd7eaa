package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or alters tables for the given models in order.
func AutoMigrate(db *gorm.DB, models ...interface{}) error {
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	return nil
}
