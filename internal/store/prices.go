/**
 * @description
 * Price Sample persistence: the realtime buffered flush (§4.2.5) and the
 * plain idempotent sample insert the Backfill Manager uses.
 *
 * @dependencies
 * - gorm.io/gorm, gorm.io/gorm/clause
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/bankai-project/indexer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BufferedPrice is one pending (token_id -> price) update awaiting flush.
type BufferedPrice struct {
	MarketID string
	TokenID  string
	Price    float64
	Instant  time.Time
}

// FlushPrices applies a snapshot of the realtime price buffer: groups by
// market, replaces the price at the matching outcome index, appends an
// idempotent Price Sample per update, and writes back the merged
// outcome_prices plus price_updated_at — all market groups in one single
// transaction, never touching last_trade_price (§4.2.5 step 3).
func (s *Store) FlushPrices(ctx context.Context, snapshot map[string]BufferedPrice) error {
	if len(snapshot) == 0 {
		return nil
	}

	byMarket := make(map[string][]BufferedPrice)
	for _, bp := range snapshot {
		byMarket[bp.MarketID] = append(byMarket[bp.MarketID], bp)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for marketID, updates := range byMarket {
			var m models.Market
			err := tx.Select("id", "outcome_token_ids", "outcome_prices").
				Where("id = ?", marketID).First(&m).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}

			prices := append(models.FloatArray(nil), m.OutcomePrices...)
			now := time.Now()

			for _, u := range updates {
				if idx := indexOfToken(m.OutcomeTokenIDs, u.TokenID); idx >= 0 && idx < len(prices) {
					prices[idx] = u.Price
				}

				sample := models.PriceSample{
					MarketID: marketID,
					TokenID:  u.TokenID,
					Instant:  u.Instant,
					Price:    u.Price,
					Source:   "websocket",
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sample).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&models.Market{}).Where("id = ?", marketID).Updates(map[string]interface{}{
				"outcome_prices":    prices,
				"price_updated_at": now,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func indexOfToken(tokens models.StringArray, tokenID string) int {
	for i, t := range tokens {
		if t == tokenID {
			return i
		}
	}
	return -1
}

// InsertPriceSamples bulk-inserts samples with "do nothing on conflict" on
// the (market_id, token_id, instant, source) unique index, used by the
// Backfill Manager.
func (s *Store) InsertPriceSamples(ctx context.Context, samples []models.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}
	return withRetry(func() error {
		return s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(samples, upsertBatchSize).Error
	})
}

// MarketsWithoutPriceSamples selects up to limit active markets that have no
// Price Samples at all, ordered by descending 24h volume (§4.4 BackfillMissing).
func (s *Store) MarketsWithoutPriceSamples(ctx context.Context, limit int) ([]models.Market, error) {
	var markets []models.Market
	err := s.db.WithContext(ctx).
		Where("active AND NOT closed AND NOT archived").
		Where("NOT EXISTS (SELECT 1 FROM price_samples ps WHERE ps.market_id = markets.id)").
		Order("volume_24h DESC").
		Limit(limit).
		Find(&markets).Error
	return markets, err
}
