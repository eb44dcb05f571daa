package database

import (
	"fmt"

	"github.com/taskdesk/models"
	"gorm.io/gorm"
)

// Models lists every persisted model in migration order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.TaskImage{},
		&models.ActivityLog{},
	}
}

// Migrate migrates the database schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
