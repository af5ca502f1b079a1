package database

import (
	"fmt"

	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the activity log schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.QueueEvent{}); err != nil {
		return fmt.Errorf("auto migrate activity log: %w", err)
	}

	var count int64
	if err := db.Model(&models.QueueEvent{}).Count(&count).Error; err != nil {
		return fmt.Errorf("verify activity log: %w", err)
	}
	utils.InfoLogger.WithField("rows", count).Info("Activity log schema ready")
	return nil
}
