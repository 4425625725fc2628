package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/database/testutil"
	"github.com/vendora-hq/vendora/internal/models"
)

func createTestUser(t *testing.T, db *gorm.DB, username string, super, active bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "hashed",
		IsSuperUser: super,
		IsActive:    active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, name string) *models.PermissionGroup {
	t.Helper()

	group := &models.PermissionGroup{Name: name}
	require.NoError(t, db.Create(group).Error)
	return group
}

func createTestResource(t *testing.T, db *gorm.DB, key, path string) *models.ProtectableResource {
	t.Helper()

	resource := &models.ProtectableResource{
		ResourceKey:   key,
		Type:          models.ResourceTypePage,
		Name:          key,
		IsActive:      true,
		RequiredLevel: 1,
	}
	if path != "" {
		resource.Path = &path
	}
	require.NoError(t, db.Create(resource).Error)
	return resource
}

func grantResource(t *testing.T, db *gorm.DB, resource *models.ProtectableResource, group *models.PermissionGroup) {
	t.Helper()

	require.NoError(t, db.Create(&models.ResourcePermission{
		ProtectableResourceID: resource.ID,
		PermissionGroupID:     group.ID,
	}).Error)
}

func addMembership(t *testing.T, db *gorm.DB, user *models.User, group *models.PermissionGroup) {
	t.Helper()

	require.NoError(t, db.Create(&models.UserGroup{
		UserID:            user.ID,
		PermissionGroupID: group.ID,
	}).Error)
}

func TestCheckResourceUnknownUserDenied(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	decision, err := resolver.CheckResource(context.Background(), "00000000-0000-0000-0000-000000000000", "page:anything")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonUserNotFoundOrInactive, decision.Reason)
}

func TestCheckResourceInactiveUserDenied(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	user := createTestUser(t, db, "inactive", false, false)

	// The explicit false must survive the insert; a column default would
	// let gorm drop the zero value and store an active user instead.
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.False(t, stored.IsActive)

	decision, err := resolver.CheckResource(context.Background(), user.ID, "page:anything")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonUserNotFoundOrInactive, decision.Reason)
}

func TestCheckResourceUnregisteredResourceAllowed(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	user := createTestUser(t, db, "plain", false, true)

	decision, err := resolver.CheckResource(context.Background(), user.ID, "page:never-registered")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Empty(t, decision.Reason)
}

func TestCheckResourceOpenResourceAllowed(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	user := createTestUser(t, db, "plain", false, true)
	createTestResource(t, db, "page:open", "/open")

	decision, err := resolver.CheckResource(context.Background(), user.ID, "page:open")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Equal(t, models.ResourceTypePage, decision.ResourceType)
}

func TestCheckResourceRestrictedResource(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	member := createTestUser(t, db, "member", false, true)
	outsider := createTestUser(t, db, "outsider", false, true)
	group := createTestGroup(t, db, "Finance")
	resource := createTestResource(t, db, "page:restricted", "/restricted")
	grantResource(t, db, resource, group)
	addMembership(t, db, member, group)

	decision, err := resolver.CheckResource(context.Background(), member.ID, "page:restricted")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = resolver.CheckResource(context.Background(), outsider.ID, "page:restricted")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonNotInAllowedGroups, decision.Reason)
}

func TestCheckResourceSuperUserBypassesGrants(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	super := createTestUser(t, db, "root", true, true)
	group := createTestGroup(t, db, "Finance")
	resource := createTestResource(t, db, "page:locked", "/locked")
	grantResource(t, db, resource, group)

	decision, err := resolver.CheckResource(context.Background(), super.ID, "page:locked")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	// An inactive super-user keeps no access.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", super.ID).Update("is_active", false).Error)
	decision, err = resolver.CheckResource(context.Background(), super.ID, "page:locked")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonUserNotFoundOrInactive, decision.Reason)
}

func TestCheckResourceInactiveResourceAllowed(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	user := createTestUser(t, db, "plain", false, true)
	group := createTestGroup(t, db, "Finance")
	resource := createTestResource(t, db, "page:retired", "/retired")
	grantResource(t, db, resource, group)
	require.NoError(t, db.Model(&models.ProtectableResource{}).
		Where("id = ?", resource.ID).Update("is_active", false).Error)

	decision, err := resolver.CheckResource(context.Background(), user.ID, "page:retired")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestCheckPageByPath(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	member := createTestUser(t, db, "member", false, true)
	outsider := createTestUser(t, db, "outsider", false, true)
	group := createTestGroup(t, db, "Legal")
	resource := createTestResource(t, db, "page:contracts", "/contracts")
	grantResource(t, db, resource, group)
	addMembership(t, db, member, group)

	decision, err := resolver.CheckPageByPath(context.Background(), member.ID, "/contracts")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = resolver.CheckPageByPath(context.Background(), outsider.ID, "/contracts")
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	// Unregistered paths are not under access control.
	decision, err = resolver.CheckPageByPath(context.Background(), outsider.ID, "/public/help")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestCheckPageByPathMatchesStoredPathOnly(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	outsider := createTestUser(t, db, "outsider", false, true)
	inactive := createTestUser(t, db, "dormant", false, false)

	// A restricted page whose stored path was edited away from the one its
	// key derives from. Requests for the old path hit no stored page and
	// must pass through as unregistered, not fall back to the derived key.
	group := createTestGroup(t, db, "Legal")
	moved := createTestResource(t, db, "page:legacy", "/legacy-v2")
	grantResource(t, db, moved, group)

	decision, err := resolver.CheckPageByPath(context.Background(), outsider.ID, "/legacy")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	// The stored path still enforces the grant.
	decision, err = resolver.CheckPageByPath(context.Background(), outsider.ID, "/legacy-v2")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonNotInAllowedGroups, decision.Reason)

	// Inactive users stay denied even on unmatched paths.
	decision, err = resolver.CheckPageByPath(context.Background(), inactive.ID, "/legacy")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonUserNotFoundOrInactive, decision.Reason)
}

func TestEffectivePermissions(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	user := createTestUser(t, db, "analyst", false, true)
	groupX := createTestGroup(t, db, "X")
	groupY := createTestGroup(t, db, "Y")
	addMembership(t, db, user, groupX)

	open := createTestResource(t, db, "page:eff-open", "/eff-open")
	restrictedX := createTestResource(t, db, "page:eff-x", "/eff-x")
	restrictedY := createTestResource(t, db, "page:eff-y", "/eff-y")
	grantResource(t, db, restrictedX, groupX)
	grantResource(t, db, restrictedY, groupY)

	perms, err := resolver.EffectivePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, perms)
	require.Equal(t, user.ID, perms.UserID)
	require.False(t, perms.IsSuperUser)
	require.Equal(t, []string{groupX.ID}, perms.GroupIDs)
	require.ElementsMatch(t, []string{open.ResourceKey, restrictedX.ResourceKey}, perms.AccessibleResources)
}

func TestEffectivePermissionsMissingUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	perms, err := resolver.EffectivePermissions(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	require.Nil(t, perms)
}

func TestEffectivePermissionsInactiveUserIsEmpty(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	user := createTestUser(t, db, "dormant", false, false)
	createTestResource(t, db, "page:eff-any", "/eff-any")

	perms, err := resolver.EffectivePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, perms)
	require.Empty(t, perms.AccessibleResources)
}

func TestEffectivePermissionsSuperUserSeesEverything(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	super := createTestUser(t, db, "root", true, true)
	group := createTestGroup(t, db, "Finance")
	restricted := createTestResource(t, db, "page:eff-super", "/eff-super")
	grantResource(t, db, restricted, group)

	perms, err := resolver.EffectivePermissions(context.Background(), super.ID)
	require.NoError(t, err)
	require.NotNil(t, perms)
	require.True(t, perms.IsSuperUser)
	require.Contains(t, perms.AccessibleResources, restricted.ResourceKey)
}

func TestAccessiblePagePaths(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	user := createTestUser(t, db, "viewer", false, true)
	group := createTestGroup(t, db, "Finance")
	addMembership(t, db, user, group)

	createTestResource(t, db, "page:nav-open", "/nav-open")
	restricted := createTestResource(t, db, "page:nav-finance", "/nav-finance")
	hidden := createTestResource(t, db, "page:nav-hidden", "/nav-hidden")
	grantResource(t, db, restricted, group)
	grantResource(t, db, hidden, createTestGroup(t, db, "Other"))

	inactive := createTestResource(t, db, "page:nav-retired", "/nav-retired")
	require.NoError(t, db.Model(&models.ProtectableResource{}).
		Where("id = ?", inactive.ID).Update("is_active", false).Error)

	paths, err := resolver.AccessiblePagePaths(context.Background(), user.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"/nav-open", "/nav-finance"}, paths)
}

func TestAccessiblePagePathsUnknownUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resolver, err := NewResolver(db)
	require.NoError(t, err)

	paths, err := resolver.AccessiblePagePaths(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	require.Empty(t, paths)
}
