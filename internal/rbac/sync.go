package rbac

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendora-hq/vendora/internal/models"
	"github.com/vendora-hq/vendora/pkg/logger"
	"github.com/vendora-hq/vendora/pkg/metrics"
)

// SyncResult reports the outcome of a registry sync run.
type SyncResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// synced guards against redundant seeding within one process. It is an
// optimization only: the insert-or-ignore write below is idempotent across
// processes, so concurrent replicas need no coordination.
var synced atomic.Bool

// SyncResources inserts catalog definitions that are not yet present in the
// store. It never updates existing rows, so administrator edits to name,
// description or required level survive deploys even when the in-code
// definition changed. Repeat invocations within the same process are no-ops
// reporting zero additions.
func SyncResources(ctx context.Context, db *gorm.DB, defs []ResourceDefinition) (SyncResult, error) {
	if db == nil {
		return SyncResult{}, errors.New("rbac: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx := db.WithContext(ctx)

	if !synced.CompareAndSwap(false, true) {
		var total int64
		if err := tx.Model(&models.ProtectableResource{}).Count(&total).Error; err != nil {
			return SyncResult{}, fmt.Errorf("rbac: count resources: %w", err)
		}
		return SyncResult{Added: 0, Skipped: len(defs), Total: int(total)}, nil
	}

	if len(defs) == 0 {
		var total int64
		if err := tx.Model(&models.ProtectableResource{}).Count(&total).Error; err != nil {
			return SyncResult{}, fmt.Errorf("rbac: count resources: %w", err)
		}
		return SyncResult{Total: int(total)}, nil
	}

	var before int64
	if err := tx.Model(&models.ProtectableResource{}).Count(&before).Error; err != nil {
		return SyncResult{}, fmt.Errorf("rbac: count resources: %w", err)
	}

	records := make([]models.ProtectableResource, 0, len(defs))
	for _, def := range defs {
		records = append(records, resourceRecord(def))
	}

	// One batch insert keyed on resource_key; conflicts are silently skipped
	// so partially seeded stores (another replica got there first, or a
	// crashed run is retried) converge without clobbering existing rows.
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_key"}},
		DoNothing: true,
	}).Create(&records).Error; err != nil {
		return SyncResult{}, fmt.Errorf("rbac: seed resources: %w", err)
	}

	var after int64
	if err := tx.Model(&models.ProtectableResource{}).Count(&after).Error; err != nil {
		return SyncResult{}, fmt.Errorf("rbac: count resources: %w", err)
	}

	result := SyncResult{
		Added:   int(after - before),
		Skipped: len(defs) - int(after-before),
		Total:   int(after),
	}

	if result.Added > 0 {
		metrics.CatalogSeededResources.Add(float64(result.Added))
		logger.WithModule("rbac").Info("seeded protectable resources",
			zap.Int("added", result.Added),
			zap.Int("total", result.Total),
		)
	}

	return result, nil
}

// SyncResourcesSafe runs SyncResources and swallows any error after logging
// it. Seeding is a best-effort convenience: resolution fails open for
// unknown resources, so a store outage at startup must never prevent the
// application from serving traffic.
func SyncResourcesSafe(ctx context.Context, db *gorm.DB, defs []ResourceDefinition) SyncResult {
	result, err := SyncResources(ctx, db, defs)
	if err != nil {
		logger.WithModule("rbac").Error("resource registry sync failed", zap.Error(err))
	}
	return result
}

// resetSyncGuard clears the one-shot seeding flag. Intended for testing only.
func resetSyncGuard() {
	synced.Store(false)
}

func resourceRecord(def ResourceDefinition) models.ProtectableResource {
	record := models.ProtectableResource{
		ResourceKey:   def.Key,
		Type:          def.Type,
		Name:          def.Name,
		Description:   def.Description,
		SortOrder:     def.SortOrder,
		IsActive:      true,
		RequiredLevel: def.RequiredLevel,
	}
	if record.Name == "" {
		record.Name = def.Key
	}
	if record.RequiredLevel <= 0 {
		record.RequiredLevel = 1
	}
	if def.ParentKey != "" {
		parent := def.ParentKey
		record.ParentKey = &parent
	}
	if def.Path != "" {
		path := def.Path
		record.Path = &path
	}
	return record
}
