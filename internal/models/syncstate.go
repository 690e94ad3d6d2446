/**
 * @description
 * Sync-state database model: one row per tracked entity, giving the core's
 * read-only status surface something to report on.
 * Maps to the 'sync_state' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import "time"

// SyncStateRow tracks the last-known sync outcome for a single entity, e.g.
// "events", "markets", "trades", "prices", "clob_audit". Status is one of
// "idle", "syncing", "error", "disabled", "connected", "disconnected"
// depending on which manager owns the entity.
type SyncStateRow struct {
	Entity string `gorm:"primaryKey;column:entity" json:"entity"`

	Status       string  `gorm:"column:status" json:"status"`
	LastSyncAt   *time.Time `gorm:"column:last_sync_at" json:"last_sync_at"`
	ErrorMessage string  `gorm:"column:error_message" json:"error_message"`

	// Metadata carries manager-specific extras (e.g. run id, items processed).
	Metadata JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name used by SyncStateRow to `sync_state`
func (SyncStateRow) TableName() string {
	return "sync_state"
}

// IsStale reports whether this row's last sync is older than threshold,
// relative to now.
func (s SyncStateRow) IsStale(now time.Time, threshold time.Duration) bool {
	if s.LastSyncAt == nil {
		return true
	}
	return now.Sub(*s.LastSyncAt) > threshold
}
