package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/vendora-hq/vendora/internal/database/testutil"
	"github.com/vendora-hq/vendora/internal/models"
	"github.com/vendora-hq/vendora/internal/services"
)

func seedAuditEntry(t *testing.T, db *gorm.DB, action string, age time.Duration) {
	t.Helper()

	entry := models.AuditLog{Action: action, Result: "success"}
	require.NoError(t, db.Create(&entry).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).Where("id = ?", entry.ID).
		Update("created_at", time.Now().Add(-age)).Error)
}

func TestRunOncePrunesStaleAuditLogs(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	seedAuditEntry(t, db, "group.create", 120*24*time.Hour)
	seedAuditEntry(t, db, "group.update", 24*time.Hour)

	cleaner := NewCleaner(audit, WithAuditRetentionDays(90))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	logs, err := audit.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "group.update", logs[0].Action)
}

func TestRunOnceRespectsRetentionWindow(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	seedAuditEntry(t, db, "group.create", 40*24*time.Hour)

	cleaner := NewCleaner(audit, WithAuditRetentionDays(60))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	logs, err := audit.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestRunOnceWithNilAuditIsNoOp(t *testing.T) {
	cleaner := NewCleaner(nil)
	require.NoError(t, cleaner.RunOnce(context.Background()))
}

func TestCleanerHonoursInjectedClock(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	// With the clock pushed into the future, even a fresh entry falls
	// outside the retention window.
	seedAuditEntry(t, db, "group.create", 0)

	future := time.Now().Add(200 * 24 * time.Hour)
	cleaner := NewCleaner(audit,
		WithAuditRetentionDays(90),
		WithNow(func() time.Time { return future }),
	)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	logs, err := audit.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestStartAndStopScheduler(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	cleaner := NewCleaner(audit, WithAuditSchedule("@every 1h"))
	require.NoError(t, cleaner.Start())

	stopCtx := cleaner.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
