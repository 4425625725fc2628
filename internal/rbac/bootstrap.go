package rbac

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendora-hq/vendora/internal/models"
)

const (
	// AdministratorsGroupName identifies the system group created at
	// initialization. It cannot be deleted.
	AdministratorsGroupName = "Administrators"

	// AccessControlResourceKey is the settings screen where groups and
	// grants are edited. The Administrators group is always granted access
	// to it so the system can never bootstrap into a state where nobody can
	// reach the access-control UI.
	AccessControlResourceKey = "page:settings-access-control"
)

// Initialize seeds the resource registry, ensures the Administrators system
// group exists and grants it the access-control screen. Seeding itself is
// best-effort (resolution fails open for unknown resources); failures in the
// group or grant steps are returned.
func Initialize(ctx context.Context, db *gorm.DB, defs []ResourceDefinition) error {
	if db == nil {
		return errors.New("rbac: db is required")
	}
	ctx = ensureContext(ctx)

	SyncResourcesSafe(ctx, db, defs)

	group, err := ensureAdministratorsGroup(ctx, db)

	if group != nil {
		err = multierr.Append(err, ensureAccessControlGrant(ctx, db, group))
	}

	return err
}

func ensureAdministratorsGroup(ctx context.Context, db *gorm.DB) (*models.PermissionGroup, error) {
	group := &models.PermissionGroup{}
	err := db.WithContext(ctx).
		Where(models.PermissionGroup{Name: AdministratorsGroupName}).
		Attrs(models.PermissionGroup{
			Description: "Full administrative access",
			IsSystem:    true,
		}).
		FirstOrCreate(group).Error
	if err != nil {
		return nil, fmt.Errorf("rbac: ensure administrators group: %w", err)
	}
	return group, nil
}

func ensureAccessControlGrant(ctx context.Context, db *gorm.DB, group *models.PermissionGroup) error {
	var resource models.ProtectableResource
	err := db.WithContext(ctx).
		Where("resource_key = ?", AccessControlResourceKey).
		First(&resource).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Seeding may have failed or the catalog may omit the screen; the
		// grant is re-attempted on the next start.
		return nil
	case err != nil:
		return fmt.Errorf("rbac: load access-control resource: %w", err)
	}

	grant := models.ResourcePermission{
		ProtectableResourceID: resource.ID,
		PermissionGroupID:     group.ID,
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error; err != nil {
		return fmt.Errorf("rbac: grant access-control to administrators: %w", err)
	}
	return nil
}
