/**
 * @description
 * Price Sample database model.
 * Maps to the 'price_samples' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import "time"

// PriceSample is a single (market, token, instant, price) observation, tagged
// with the subsystem that produced it. Idempotent on
// (market_id, token_id, instant, source): backfill (source="clob") and the
// realtime flush (source="websocket") may both observe and insert the same
// tuple without producing a duplicate row.
type PriceSample struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	MarketID string `gorm:"column:market_id;index:idx_price_samples_market_time;uniqueIndex:idx_price_samples_unique" json:"market_id"`
	TokenID  string `gorm:"column:token_id;uniqueIndex:idx_price_samples_unique" json:"token_id"`

	Instant time.Time `gorm:"column:instant;index:idx_price_samples_market_time;uniqueIndex:idx_price_samples_unique" json:"instant"`
	Price   float64   `gorm:"column:price;type:decimal(10,6)" json:"price"`

	// Source is either "clob" (historical backfill) or "websocket" (realtime feed).
	Source string `gorm:"column:source;uniqueIndex:idx_price_samples_unique" json:"source"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides the table name used by PriceSample to `price_samples`
func (PriceSample) TableName() string {
	return "price_samples"
}
