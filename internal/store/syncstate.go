/**
 * @description
 * sync_state CRUD: the per-entity status rows consumers read to determine
 * staleness and degradation (§6 sync-state surface).
 *
 * @dependencies
 * - gorm.io/gorm, gorm.io/gorm/clause
 */

package store

import (
	"context"
	"time"

	"github.com/bankai-project/indexer/internal/models"
	"gorm.io/gorm/clause"
)

// SetSyncStatus upserts the sync_state row for entity with the given status,
// clearing any prior error message. Called on the start of a sync pass and
// on its successful completion.
func (s *Store) SetSyncStatus(ctx context.Context, entity, status string) error {
	now := time.Now()
	row := models.SyncStateRow{
		Entity:       entity,
		Status:       status,
		LastSyncAt:   &now,
		ErrorMessage: "",
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "last_sync_at", "error_message", "updated_at"}),
	}).Create(&row).Error
}

// SetSyncError upserts the sync_state row for entity with status "error" and
// the given message, per §4.1.9 per-entity failure semantics. last_sync_at is
// left untouched, since an error means no successful sync occurred.
func (s *Store) SetSyncError(ctx context.Context, entity string, syncErr error) error {
	row := models.SyncStateRow{
		Entity:       entity,
		Status:       "error",
		ErrorMessage: syncErr.Error(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "error_message", "updated_at"}),
	}).Create(&row).Error
}

// GetSyncStates returns every sync_state row, used by the status surface and
// the Orchestrator's aggregated Status().
func (s *Store) GetSyncStates(ctx context.Context) ([]models.SyncStateRow, error) {
	var rows []models.SyncStateRow
	err := s.db.WithContext(ctx).Order("entity").Find(&rows).Error
	return rows, err
}
