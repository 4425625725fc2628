package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vendora-hq/vendora/internal/database/testutil"
	"github.com/vendora-hq/vendora/internal/models"
)

func TestSyncResourcesSeedsCatalog(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resetSyncGuard()

	defs := []ResourceDefinition{
		{Key: "page:sync-one", Type: models.ResourceTypePage, Name: "One", Path: "/sync-one"},
		{Key: "page:sync-two", Type: models.ResourceTypePage, Name: "Two", Path: "/sync-two"},
		{Key: "component:sync-widget", Type: models.ResourceTypeComponent, Name: "Widget"},
	}

	result, err := SyncResources(context.Background(), db, defs)
	require.NoError(t, err)
	require.Equal(t, 3, result.Added)
	require.Equal(t, 0, result.Skipped)
	require.Equal(t, 3, result.Total)

	var stored models.ProtectableResource
	require.NoError(t, db.First(&stored, "resource_key = ?", "page:sync-one").Error)
	require.Equal(t, "One", stored.Name)
	require.True(t, stored.IsActive)
	require.Equal(t, 1, stored.RequiredLevel)
	require.NotNil(t, stored.Path)
	require.Equal(t, "/sync-one", *stored.Path)
}

func TestSyncResourcesNeverUpdatesExistingRows(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resetSyncGuard()

	defs := []ResourceDefinition{
		{Key: "page:sync-keep", Type: models.ResourceTypePage, Name: "Original", Path: "/sync-keep"},
	}

	_, err := SyncResources(context.Background(), db, defs)
	require.NoError(t, err)

	// An administrator renames and deactivates the resource.
	require.NoError(t, db.Model(&models.ProtectableResource{}).
		Where("resource_key = ?", "page:sync-keep").
		Updates(map[string]any{"name": "Renamed", "is_active": false}).Error)

	resetSyncGuard()
	defs[0].Name = "Changed In Code"
	result, err := SyncResources(context.Background(), db, defs)
	require.NoError(t, err)
	require.Equal(t, 0, result.Added)
	require.Equal(t, 1, result.Skipped)

	var stored models.ProtectableResource
	require.NoError(t, db.First(&stored, "resource_key = ?", "page:sync-keep").Error)
	require.Equal(t, "Renamed", stored.Name)
	require.False(t, stored.IsActive)
}

func TestSyncResourcesSecondCallIsNoOp(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	resetSyncGuard()

	defs := []ResourceDefinition{
		{Key: "page:sync-once", Type: models.ResourceTypePage, Name: "Once"},
	}

	first, err := SyncResources(context.Background(), db, defs)
	require.NoError(t, err)
	require.Equal(t, 1, first.Added)

	second, err := SyncResources(context.Background(), db, defs)
	require.NoError(t, err)
	require.Equal(t, 0, second.Added)
	require.Equal(t, len(defs), second.Skipped)
	require.Equal(t, 1, second.Total)
}

func TestSyncResourcesSafeSwallowsErrors(t *testing.T) {
	resetSyncGuard()

	// A nil database handle is the simplest failure mode; the safe wrapper
	// must not propagate it.
	result := SyncResourcesSafe(context.Background(), nil, []ResourceDefinition{
		{Key: "page:sync-error", Type: models.ResourceTypePage},
	})
	require.Equal(t, SyncResult{}, result)
}

func TestSyncResourcesRequiresDB(t *testing.T) {
	resetSyncGuard()

	_, err := SyncResources(context.Background(), nil, nil)
	require.Error(t, err)
}
