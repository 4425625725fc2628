package rbac

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/models"
)

// Denial reasons surfaced to callers. These are part of the API contract
// consumed by the HTTP guard and the UI.
const (
	ReasonUserNotFoundOrInactive = "user not found or inactive"
	ReasonNotInAllowedGroups     = "user is not in any of the allowed groups"
)

// Decision is the outcome of a single access check.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

// EffectivePermissions is the complete computed access set for one user.
type EffectivePermissions struct {
	UserID              string   `json:"user_id"`
	IsSuperUser         bool     `json:"is_super_user"`
	GroupIDs            []string `json:"group_ids"`
	AccessibleResources []string `json:"accessible_resources"`
}

// Resolver decides whether users may access protectable resources.
//
// Resources absent from the store, and resources with no group attached,
// resolve to allow: the model is public by default, restrict explicitly.
type Resolver struct {
	db *gorm.DB
}

// NewResolver constructs a resolver backed by the provided database.
func NewResolver(db *gorm.DB) (*Resolver, error) {
	if db == nil {
		return nil, errors.New("rbac: resolver requires a db handle")
	}
	return &Resolver{db: db}, nil
}

// CheckResource determines whether the user may access the resource
// identified by key. Inactive and unknown users are denied; super-users are
// allowed unconditionally; unknown, inactive and open resources are allowed.
func (r *Resolver) CheckResource(ctx context.Context, userID, resourceKey string) (Decision, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Decision{}, errors.New("rbac: user id is required")
	}
	resourceKey = strings.TrimSpace(resourceKey)
	if resourceKey == "" {
		return Decision{}, errors.New("rbac: resource key is required")
	}

	user, denied, err := r.resolveActiveUser(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	if denied != nil {
		return *denied, nil
	}

	if user.IsSuperUser {
		return Decision{Allowed: true}, nil
	}

	var resource models.ProtectableResource
	err = r.db.WithContext(ctx).Preload("Groups").
		Where("resource_key = ? AND is_active = ?", resourceKey, true).
		First(&resource).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Unregistered resources are, by definition, not yet under access
		// control.
		return Decision{Allowed: true}, nil
	case err != nil:
		return Decision{}, fmt.Errorf("rbac: load resource: %w", err)
	}

	if len(resource.Groups) == 0 {
		return Decision{Allowed: true, ResourceType: resource.Type}, nil
	}

	memberships := groupIDSet(user.Groups)
	for _, group := range resource.Groups {
		if _, ok := memberships[group.ID]; ok {
			return Decision{Allowed: true, ResourceType: resource.Type}, nil
		}
	}

	return Decision{Allowed: false, Reason: ReasonNotInAllowedGroups, ResourceType: resource.Type}, nil
}

// CheckPageByPath resolves a request path to a page resource and checks it.
// A path with no matching stored page is not under access control: the user
// check still applies, then the request is allowed. Lookup is strictly by
// stored path, never by a key derived from the path, so an administrator
// edit to a page's path takes immediate effect.
func (r *Resolver) CheckPageByPath(ctx context.Context, userID, path string) (Decision, error) {
	ctx = ensureContext(ctx)

	var resource models.ProtectableResource
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ? AND path = ?", models.ResourceTypePage, true, strings.TrimSpace(path)).
		First(&resource).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		_, denied, userErr := r.resolveActiveUser(ctx, userID)
		if userErr != nil {
			return Decision{}, userErr
		}
		if denied != nil {
			return *denied, nil
		}
		return Decision{Allowed: true}, nil
	case err != nil:
		return Decision{}, fmt.Errorf("rbac: resolve path: %w", err)
	}

	return r.CheckResource(ctx, userID, resource.ResourceKey)
}

// EffectivePermissions computes the full accessible-resource set for a user
// in a single pass over all active resources and their grants. It returns
// nil (without error) when the user does not exist. Inactive users hold no
// effective access.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID string) (*EffectivePermissions, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("rbac: user id is required")
	}

	var user models.User
	err := r.db.WithContext(ctx).Preload("Groups").First(&user, "id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("rbac: load user: %w", err)
	}

	memberships := groupIDSet(user.Groups)
	groupIDs := make([]string, 0, len(memberships))
	for id := range memberships {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	result := &EffectivePermissions{
		UserID:              user.ID,
		IsSuperUser:         user.IsSuperUser,
		GroupIDs:            groupIDs,
		AccessibleResources: []string{},
	}

	if !user.IsActive {
		return result, nil
	}

	resources, err := r.activeResources(ctx)
	if err != nil {
		return nil, err
	}

	for _, resource := range resources {
		if user.IsSuperUser || resourceAccessible(&resource, memberships) {
			result.AccessibleResources = append(result.AccessibleResources, resource.ResourceKey)
		}
	}

	return result, nil
}

// AccessiblePagePaths returns the paths of active page resources the user
// may access, for navigation filtering. Paths of inactive resources are
// never exposed. An unknown user yields an empty list.
func (r *Resolver) AccessiblePagePaths(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)

	perms, err := r.EffectivePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		return []string{}, nil
	}

	accessible := make(map[string]struct{}, len(perms.AccessibleResources))
	for _, key := range perms.AccessibleResources {
		accessible[key] = struct{}{}
	}

	var pages []models.ProtectableResource
	if err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ? AND path IS NOT NULL", models.ResourceTypePage, true).
		Order("sort_order ASC, resource_key ASC").
		Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("rbac: load pages: %w", err)
	}

	paths := make([]string, 0, len(pages))
	for _, page := range pages {
		if page.Path == nil || *page.Path == "" {
			continue
		}
		if _, ok := accessible[page.ResourceKey]; ok {
			paths = append(paths, *page.Path)
		}
	}
	return paths, nil
}

// resolveActiveUser loads the user with memberships preloaded. A missing or
// inactive user yields a deny decision instead of an error.
func (r *Resolver) resolveActiveUser(ctx context.Context, userID string) (*models.User, *Decision, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, errors.New("rbac: user id is required")
	}

	var user models.User
	err := r.db.WithContext(ctx).Preload("Groups").First(&user, "id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &Decision{Allowed: false, Reason: ReasonUserNotFoundOrInactive}, nil
	case err != nil:
		return nil, nil, fmt.Errorf("rbac: load user: %w", err)
	}
	if !user.IsActive {
		return nil, &Decision{Allowed: false, Reason: ReasonUserNotFoundOrInactive}, nil
	}
	return &user, nil, nil
}

func (r *Resolver) activeResources(ctx context.Context) ([]models.ProtectableResource, error) {
	var resources []models.ProtectableResource
	if err := r.db.WithContext(ctx).Preload("Groups").
		Where("is_active = ?", true).
		Order("sort_order ASC, resource_key ASC").
		Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("rbac: load resources: %w", err)
	}
	return resources, nil
}

func resourceAccessible(resource *models.ProtectableResource, memberships map[string]struct{}) bool {
	if len(resource.Groups) == 0 {
		return true
	}
	for _, group := range resource.Groups {
		if _, ok := memberships[group.ID]; ok {
			return true
		}
	}
	return false
}

func groupIDSet(groups []models.PermissionGroup) map[string]struct{} {
	set := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		set[group.ID] = struct{}{}
	}
	return set
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
