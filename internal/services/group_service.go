package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendora-hq/vendora/internal/models"
	apperrors "github.com/vendora-hq/vendora/pkg/errors"
	"github.com/vendora-hq/vendora/pkg/metrics"
)

var (
	// ErrGroupNotFound indicates the requested permission group does not exist.
	ErrGroupNotFound = apperrors.New("GROUP_NOT_FOUND", "Permission group not found", http.StatusNotFound)
	// ErrSystemGroupImmutable prevents deletion of system groups.
	ErrSystemGroupImmutable = apperrors.New("GROUP_SYSTEM_IMMUTABLE", "Cannot delete system groups", http.StatusBadRequest)
	// ErrResourceNotFound indicates the requested protectable resource does not exist.
	ErrResourceNotFound = apperrors.New("RESOURCE_NOT_FOUND", "Protectable resource not found", http.StatusNotFound)
	// ErrUnknownGroups indicates an assignment referenced group ids that do not exist.
	ErrUnknownGroups = apperrors.New("GROUP_UNKNOWN_IDS", "One or more permission groups do not exist", http.StatusBadRequest)
)

// GroupService manages permission groups, resource grants and user
// memberships.
type GroupService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewGroupService constructs a GroupService using the provided database handle.
func NewGroupService(db *gorm.DB, audit *AuditService) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	return &GroupService{db: db, audit: audit}, nil
}

// CreateGroupInput describes the payload accepted by CreateGroup.
type CreateGroupInput struct {
	Name        string
	Description string
	IsSystem    bool
}

// UpdateGroupInput describes mutable fields on a group. Nil fields are
// left untouched, so a caller can rename without clearing the description.
type UpdateGroupInput struct {
	Name        *string
	Description *string
}

// CreateGroup registers a new permission group.
func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (*models.PermissionGroup, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("group name is required")
	}

	group := &models.PermissionGroup{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsSystem:    input.IsSystem,
	}

	if err := s.db.WithContext(ctx).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("group name already exists")
		}
		return nil, fmt.Errorf("group service: create group: %w", err)
	}

	metrics.GroupMutations.WithLabelValues("create").Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "group.create",
		Resource: group.ID,
		Result:   "success",
		Metadata: map[string]any{
			"name":      group.Name,
			"is_system": group.IsSystem,
		},
	})

	return group, nil
}

// UpdateGroup modifies group metadata.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID string, input UpdateGroupInput) (*models.PermissionGroup, error) {
	ctx = ensureContext(ctx)

	var group models.PermissionGroup
	if err := s.db.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("group service: load group: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != group.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != group.Description {
			updates["description"] = desc
		}
	}

	if len(updates) == 0 {
		return &group, nil
	}

	if err := s.db.WithContext(ctx).Model(&group).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("group name already exists")
		}
		return nil, fmt.Errorf("group service: update group: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		return nil, fmt.Errorf("group service: reload group: %w", err)
	}

	metrics.GroupMutations.WithLabelValues("update").Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "group.update",
		Resource: group.ID,
		Result:   "success",
		Metadata: updates,
	})

	return &group, nil
}

// DeleteGroup removes a non-system group together with its memberships and
// resource grants. The cleanup runs in one transaction so no dangling join
// rows survive the deletion.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	ctx = ensureContext(ctx)

	var deleted models.PermissionGroup

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.PermissionGroup
		if err := tx.First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("group service: load group: %w", err)
		}

		if group.IsSystem {
			return ErrSystemGroupImmutable
		}

		if err := tx.Where("permission_group_id = ?", group.ID).Delete(&models.ResourcePermission{}).Error; err != nil {
			return fmt.Errorf("group service: clear resource grants: %w", err)
		}
		if err := tx.Where("permission_group_id = ?", group.ID).Delete(&models.UserGroup{}).Error; err != nil {
			return fmt.Errorf("group service: clear memberships: %w", err)
		}
		if err := tx.Delete(&group).Error; err != nil {
			return fmt.Errorf("group service: delete group: %w", err)
		}

		deleted = group
		return nil
	})
	if err != nil {
		return err
	}

	metrics.GroupMutations.WithLabelValues("delete").Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "group.delete",
		Resource: deleted.ID,
		Result:   "success",
		Metadata: map[string]any{
			"name": deleted.Name,
		},
	})

	return nil
}

// GetGroup loads a single group with its resource grants.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.PermissionGroup, error) {
	ctx = ensureContext(ctx)

	var group models.PermissionGroup
	if err := s.db.WithContext(ctx).Preload("Resources").First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("group service: load group: %w", err)
	}
	return &group, nil
}

// ListGroups returns all groups ordered by creation date.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.PermissionGroup, error) {
	ctx = ensureContext(ctx)

	var groups []models.PermissionGroup
	if err := s.db.WithContext(ctx).Preload("Resources").Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("group service: list groups: %w", err)
	}
	return groups, nil
}

// AssignGroupsToResource replaces the resource's complete grant set. The
// delete-then-insert runs in one transaction: a concurrent permission check
// sees either the old set or the new set, never an empty intermediate state.
// An empty groupIDs slice makes the resource open.
func (s *GroupService) AssignGroupsToResource(ctx context.Context, resourceID string, groupIDs []string) error {
	ctx = ensureContext(ctx)

	ids := normaliseIDs(groupIDs)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resource models.ProtectableResource
		if err := tx.First(&resource, "id = ?", resourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResourceNotFound
			}
			return fmt.Errorf("group service: load resource: %w", err)
		}

		if err := requireGroupsExist(tx, ids); err != nil {
			return err
		}

		if err := tx.Where("protectable_resource_id = ?", resource.ID).Delete(&models.ResourcePermission{}).Error; err != nil {
			return fmt.Errorf("group service: clear resource grants: %w", err)
		}

		if len(ids) == 0 {
			return nil
		}

		grants := make([]models.ResourcePermission, 0, len(ids))
		for _, id := range ids {
			grants = append(grants, models.ResourcePermission{
				ProtectableResourceID: resource.ID,
				PermissionGroupID:     id,
			})
		}
		if err := tx.Create(&grants).Error; err != nil {
			return fmt.Errorf("group service: insert resource grants: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.GroupMutations.WithLabelValues("assign_resource").Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "resource.set_groups",
		Resource: resourceID,
		Result:   "success",
		Metadata: map[string]any{
			"group_ids": ids,
		},
	})

	return nil
}

// AddGroupToResource grants one group access to a resource. Re-adding an
// existing grant is a no-op.
func (s *GroupService) AddGroupToResource(ctx context.Context, resourceID, groupID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireResource(ctx, resourceID); err != nil {
		return err
	}
	if err := requireGroupsExist(s.db.WithContext(ctx), []string{groupID}); err != nil {
		return err
	}

	grant := models.ResourcePermission{
		ProtectableResourceID: resourceID,
		PermissionGroupID:     groupID,
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error; err != nil {
		return fmt.Errorf("group service: add resource grant: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "resource.add_group",
		Resource: resourceID,
		Result:   "success",
		Metadata: map[string]any{"group_id": groupID},
	})
	return nil
}

// RemoveGroupFromResource revokes one group's access to a resource. Removing
// an absent grant is a no-op.
func (s *GroupService) RemoveGroupFromResource(ctx context.Context, resourceID, groupID string) error {
	ctx = ensureContext(ctx)

	if err := s.db.WithContext(ctx).
		Where("protectable_resource_id = ? AND permission_group_id = ?", resourceID, groupID).
		Delete(&models.ResourcePermission{}).Error; err != nil {
		return fmt.Errorf("group service: remove resource grant: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "resource.remove_group",
		Resource: resourceID,
		Result:   "success",
		Metadata: map[string]any{"group_id": groupID},
	})
	return nil
}

// SetUserGroups replaces the user's complete group membership set inside a
// transaction, mirroring AssignGroupsToResource.
func (s *GroupService) SetUserGroups(ctx context.Context, userID string, groupIDs []string) error {
	ctx = ensureContext(ctx)

	ids := normaliseIDs(groupIDs)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("group service: load user: %w", err)
		}

		if err := requireGroupsExist(tx, ids); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserGroup{}).Error; err != nil {
			return fmt.Errorf("group service: clear memberships: %w", err)
		}

		if len(ids) == 0 {
			return nil
		}

		memberships := make([]models.UserGroup, 0, len(ids))
		for _, id := range ids {
			memberships = append(memberships, models.UserGroup{
				UserID:            user.ID,
				PermissionGroupID: id,
			})
		}
		if err := tx.Create(&memberships).Error; err != nil {
			return fmt.Errorf("group service: insert memberships: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.GroupMutations.WithLabelValues("set_user_groups").Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "user.set_groups",
		Resource: userID,
		Result:   "success",
		Metadata: map[string]any{"group_ids": ids},
	})

	return nil
}

// AddUserToGroup adds one membership; re-adding is a no-op.
func (s *GroupService) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := requireGroupsExist(s.db.WithContext(ctx), []string{groupID}); err != nil {
		return err
	}

	membership := models.UserGroup{
		UserID:            userID,
		PermissionGroupID: groupID,
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&membership).Error; err != nil {
		return fmt.Errorf("group service: add membership: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "user.add_group",
		Resource: userID,
		Result:   "success",
		Metadata: map[string]any{"group_id": groupID},
	})
	return nil
}

// RemoveUserFromGroup drops one membership; removing an absent one is a no-op.
func (s *GroupService) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	ctx = ensureContext(ctx)

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND permission_group_id = ?", userID, groupID).
		Delete(&models.UserGroup{}).Error; err != nil {
		return fmt.Errorf("group service: remove membership: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "user.remove_group",
		Resource: userID,
		Result:   "success",
		Metadata: map[string]any{"group_id": groupID},
	})
	return nil
}

// ListResources returns all resources with their grants for the admin screen.
func (s *GroupService) ListResources(ctx context.Context) ([]models.ProtectableResource, error) {
	ctx = ensureContext(ctx)

	var resources []models.ProtectableResource
	if err := s.db.WithContext(ctx).Preload("Groups").
		Order("sort_order ASC, resource_key ASC").
		Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("group service: list resources: %w", err)
	}
	return resources, nil
}

// UpdateResourceInput describes the administrator-editable resource fields.
// Registry sync never touches these once a row exists.
type UpdateResourceInput struct {
	Name          *string
	Description   *string
	SortOrder     *int
	IsActive      *bool
	RequiredLevel *int
}

// UpdateResource applies administrator edits to a seeded resource.
func (s *GroupService) UpdateResource(ctx context.Context, resourceID string, input UpdateResourceInput) (*models.ProtectableResource, error) {
	ctx = ensureContext(ctx)

	var resource models.ProtectableResource
	if err := s.db.WithContext(ctx).First(&resource, "id = ?", resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("group service: load resource: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.RequiredLevel != nil && *input.RequiredLevel > 0 {
		updates["required_level"] = *input.RequiredLevel
	}

	if len(updates) == 0 {
		return &resource, nil
	}

	if err := s.db.WithContext(ctx).Model(&resource).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("group service: update resource: %w", err)
	}
	if err := s.db.WithContext(ctx).First(&resource, "id = ?", resourceID).Error; err != nil {
		return nil, fmt.Errorf("group service: reload resource: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Action:   "resource.update",
		Resource: resource.ResourceKey,
		Result:   "success",
		Metadata: updates,
	})

	return &resource, nil
}

func (s *GroupService) requireResource(ctx context.Context, resourceID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ProtectableResource{}).
		Where("id = ?", resourceID).Count(&count).Error; err != nil {
		return fmt.Errorf("group service: load resource: %w", err)
	}
	if count == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func (s *GroupService) requireUser(ctx context.Context, userID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("group service: load user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func requireGroupsExist(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&models.PermissionGroup{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("group service: verify groups: %w", err)
	}
	if int(count) != len(ids) {
		return ErrUnknownGroups
	}
	return nil
}
