/**
 * @description
 * Market database model.
 * Maps to the 'markets' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import "time"

// Market represents a binary or N-outcome market, optionally nested inside an
// Event. Outcomes / OutcomeTokenIDs / OutcomePrices are parallel sequences
// indexed by outcome; the store writes them as received and does not check
// that their lengths match.
type Market struct {
	ID          string  `gorm:"primaryKey;column:id" json:"id"`
	EventID     *string `gorm:"column:event_id;index:idx_markets_event" json:"event_id"`
	ConditionID string  `gorm:"column:condition_id;uniqueIndex:idx_markets_condition" json:"condition_id"`

	Question    string `gorm:"column:question" json:"question"`
	Description string `gorm:"column:description" json:"description"`
	Slug        string `gorm:"column:slug;index" json:"slug"`
	Category    string `gorm:"column:category" json:"category"`

	Outcomes        StringArray `gorm:"column:outcomes;type:text[]" json:"outcomes"`
	OutcomeTokenIDs StringArray `gorm:"column:outcome_token_ids;type:text[]" json:"outcome_token_ids"`
	OutcomePrices   FloatArray  `gorm:"column:outcome_prices;type:jsonb" json:"outcome_prices"`

	BestBid        float64 `gorm:"column:best_bid" json:"best_bid"`
	BestAsk        float64 `gorm:"column:best_ask" json:"best_ask"`
	Spread         float64 `gorm:"column:spread" json:"spread"`
	LastTradePrice float64 `gorm:"column:last_trade_price" json:"last_trade_price"`

	VolumeAllTime float64 `gorm:"column:volume_all_time" json:"volume_all_time"`
	Volume24h     float64 `gorm:"column:volume_24h;index:idx_markets_volume24h" json:"volume_24h"`
	Liquidity     float64 `gorm:"column:liquidity" json:"liquidity"`

	EndDate *time.Time `gorm:"column:end_date" json:"end_date"`

	// Active/Closed/Archived/Resolved lifecycle flags. Closed and archived are
	// monotonic; on every upsert active is recomputed as the incoming active
	// flag AND NOT (closed || archived).
	Active   bool `gorm:"column:active;default:true;index:idx_markets_lifecycle" json:"active"`
	Closed   bool `gorm:"column:closed;default:false;index:idx_markets_lifecycle" json:"closed"`
	Archived bool `gorm:"column:archived;default:false;index:idx_markets_lifecycle" json:"archived"`
	Resolved bool `gorm:"column:resolved;default:false" json:"resolved"`

	// WinningOutcomeIndex is only meaningful once Resolved is true.
	WinningOutcomeIndex *int `gorm:"column:winning_outcome_index" json:"winning_outcome_index"`

	SearchVector string `gorm:"column:search_vector;->" json:"-"`

	PriceUpdatedAt *time.Time `gorm:"column:price_updated_at" json:"price_updated_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name used by Market to `markets`
func (Market) TableName() string {
	return "markets"
}

// IsLive reports whether the market is currently eligible for realtime price
// subscriptions and trade ingestion.
func (m Market) IsLive() bool {
	return m.Active && !m.Closed && !m.Archived
}
