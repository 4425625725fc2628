package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vendora-hq/vendora/internal/database/testutil"
	"github.com/vendora-hq/vendora/internal/models"
)

func TestAuditLogPersistsMetadata(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		Action:   "group.create",
		Resource: "group-id",
		Result:   "success",
		Metadata: map[string]any{"name": "Finance"},
	}))

	logs, err := svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "group.create", logs[0].Action)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &meta))
	require.Equal(t, "Finance", meta["name"])
}

func TestAuditLogRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "group.create"}))
}

func TestDeleteOlderThanPrunesOnlyStaleEntries(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	old := models.AuditLog{Action: "group.create", Result: "success"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -120)).Error)

	fresh := models.AuditLog{Action: "group.update", Result: "success"}
	require.NoError(t, db.Create(&fresh).Error)

	removed, err := svc.DeleteOlderThan(context.Background(), time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	logs, err := svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "group.update", logs[0].Action)
}

func TestGroupMutationsAreAudited(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	svc, err := NewGroupService(db, audit)
	require.NoError(t, err)

	group, err := svc.CreateGroup(context.Background(), CreateGroupInput{Name: "Finance"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteGroup(context.Background(), group.ID))

	logs, err := audit.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	actions := []string{logs[0].Action, logs[1].Action}
	require.ElementsMatch(t, []string{"group.create", "group.delete"}, actions)
}
