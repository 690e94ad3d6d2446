/**
 * @description
 * Trade Record database model.
 * Maps to the 'trades' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import "time"

// TradeRecord is an append-only execution row. ID is a deterministic content
// hash (lowercase hex of Keccak256 over
// asset|side|price|size|timestamp|transaction_hash|proxy_wallet) so
// re-ingesting the same upstream trade is a no-op rather than a duplicate.
type TradeRecord struct {
	ID string `gorm:"primaryKey;column:id" json:"id"`

	AssetID         string `gorm:"column:asset_id;index:idx_trades_asset" json:"asset_id"`
	MarketID        string `gorm:"column:market_id;index:idx_trades_market" json:"market_id"`
	Side            string `gorm:"column:side" json:"side"`
	Price           float64 `gorm:"column:price" json:"price"`
	Size            float64 `gorm:"column:size" json:"size"`
	TransactionHash string `gorm:"column:transaction_hash" json:"transaction_hash"`
	ProxyWallet     string `gorm:"column:proxy_wallet" json:"proxy_wallet"`

	ExecutedAt time.Time `gorm:"column:executed_at;index:idx_trades_executed_at" json:"executed_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides the table name used by TradeRecord to `trades`
func (TradeRecord) TableName() string {
	return "trades"
}
