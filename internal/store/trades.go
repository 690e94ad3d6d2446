/**
 * @description
 * Trade ingestion persistence: the live token->market map used to filter the
 * global trades feed, and the idempotent bulk insert of ingested trades
 * (§4.1.7).
 *
 * @dependencies
 * - gorm.io/gorm, gorm.io/gorm/clause
 */

package store

import (
	"context"

	"github.com/bankai-project/indexer/internal/models"
	"gorm.io/gorm/clause"
)

// liveMarketRow is the projection needed to build the token->market map.
type liveMarketRow struct {
	ID              string
	OutcomeTokenIDs models.StringArray
}

// LiveTokenToMarket computes the in-memory map token_id -> market_id from the
// set of currently-live markets, optionally capped to the top N by 24h
// volume when limit > 0 (§4.1.7 step 1).
func (s *Store) LiveTokenToMarket(ctx context.Context, limit int) (map[string]string, error) {
	q := s.db.WithContext(ctx).
		Table("markets").
		Select("id, outcome_token_ids").
		Where("active AND NOT closed AND NOT archived").
		Order("volume_24h DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []liveMarketRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		for _, tokenID := range r.OutcomeTokenIDs {
			out[tokenID] = r.ID
		}
	}
	return out, nil
}

// InsertTrades bulk-inserts ingested trades with "do nothing on conflict" on
// the deterministic content-hash id, so re-ingesting identical content is a
// no-op (§4.1.7 step 5, §8 trade idempotence property).
func (s *Store) InsertTrades(ctx context.Context, trades []models.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	return withRetry(func() error {
		return s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(trades, upsertBatchSize).Error
	})
}
