package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/models"
)

// AutoMigrate creates or updates the database schema for all models. The
// explicit join models give the many-to-many tables composite primary keys,
// which is what makes grant and membership inserts idempotent.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := db.SetupJoinTable(&models.ProtectableResource{}, "Groups", &models.ResourcePermission{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.PermissionGroup{}, "Resources", &models.ResourcePermission{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.User{}, "Groups", &models.UserGroup{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.PermissionGroup{}, "Users", &models.UserGroup{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.PermissionGroup{},
		&models.ProtectableResource{},
		&models.ResourcePermission{},
		&models.UserGroup{},
		&models.AuditLog{},
	)
}
