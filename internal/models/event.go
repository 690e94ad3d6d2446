/**
 * @description
 * Event database model: the aggregate container a Market optionally belongs to.
 * Maps to the 'events' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import "time"

// Event represents a Polymarket-style event: a container grouping one or more
// related markets (e.g. "Who will win the election?" groups per-candidate
// markets).
type Event struct {
	ID          string     `gorm:"primaryKey;column:id" json:"id"`
	Title       string     `gorm:"column:title" json:"title"`
	Slug        string     `gorm:"column:slug;index" json:"slug"`
	Description string     `gorm:"column:description" json:"description"`
	ImageURL    string     `gorm:"column:image_url" json:"image_url"`
	IconURL     string     `gorm:"column:icon_url" json:"icon_url"`
	StartDate   *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate     *time.Time `gorm:"column:end_date" json:"end_date"`

	VolumeAllTime float64 `gorm:"column:volume_all_time" json:"volume_all_time"`
	Volume24h     float64 `gorm:"column:volume_24h" json:"volume_24h"`
	Liquidity     float64 `gorm:"column:liquidity" json:"liquidity"`

	// Active/Closed/Archived are monotonic per spec: closed and archived never
	// reset to false once set, and on every upsert active is recomputed as
	// the incoming active flag AND NOT (closed || archived).
	Active   bool `gorm:"column:active;default:true" json:"active"`
	Closed   bool `gorm:"column:closed;default:false;index:idx_events_lifecycle" json:"closed"`
	Archived bool `gorm:"column:archived;default:false;index:idx_events_lifecycle" json:"archived"`

	Tags StringArray `gorm:"column:tags;type:text[]" json:"tags"`

	// SearchVector holds the server-computed tsvector over title+description.
	// GORM never writes this column directly; the store recomputes it in SQL
	// within the same upsert transaction (see internal/store).
	SearchVector string `gorm:"column:search_vector;->" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name used by Event to `events`
func (Event) TableName() string {
	return "events"
}
