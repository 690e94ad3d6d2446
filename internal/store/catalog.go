/**
 * @description
 * Catalog page persistence: batched event/market upserts implementing the
 * §4.1.3 merge rule, and the §4.1.4 event->market linkage pass.
 *
 * Grounded on the teacher's market_service.go PersistActiveMarkets
 * (clause.OnConflict + CreateInBatches), generalized from plain
 * AssignmentColumns overwrite into per-column gorm.Expr so closed/archived
 * OR-merge, active recompute, and the event_id carve-out can all be expressed
 * in one upsert statement instead of a read-modify-write round trip.
 *
 * @dependencies
 * - gorm.io/gorm, gorm.io/gorm/clause
 */

package store

import (
	"context"
	"fmt"

	"github.com/bankai-project/indexer/internal/models"
	"github.com/bankai-project/indexer/internal/polymarket/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 50

// UpsertEvents writes the incoming events as multi-row upserts of at most
// upsertBatchSize rows each; every batch is its own statement and commits on
// its own, so a failure can leave earlier batches of the same call applied.
// Each upsert applies the §4.1.3 merge rule: scalar fields overwrite, closed/archived
// OR-merge, active is recomputed, updated_at is server now(), and the search
// vector is recomputed over the merged row.
func (s *Store) UpsertEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	for start := 0; start < len(events); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(events) {
			end = len(events)
		}
		batch := events[start:end]

		err := withRetry(func() error {
			return s.db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"title":           gorm.Expr("EXCLUDED.title"),
					"slug":            gorm.Expr("EXCLUDED.slug"),
					"description":     gorm.Expr("EXCLUDED.description"),
					"image_url":       gorm.Expr("EXCLUDED.image_url"),
					"icon_url":        gorm.Expr("EXCLUDED.icon_url"),
					"start_date":      gorm.Expr("EXCLUDED.start_date"),
					"end_date":        gorm.Expr("EXCLUDED.end_date"),
					"volume_all_time": gorm.Expr("EXCLUDED.volume_all_time"),
					"volume_24h":      gorm.Expr("EXCLUDED.volume_24h"),
					"liquidity":       gorm.Expr("EXCLUDED.liquidity"),
					"tags":            gorm.Expr("EXCLUDED.tags"),
					"closed":          gorm.Expr("events.closed OR EXCLUDED.closed"),
					"archived":        gorm.Expr("events.archived OR EXCLUDED.archived"),
					"active":          gorm.Expr("(NOT (events.closed OR EXCLUDED.closed OR events.archived OR EXCLUDED.archived)) AND EXCLUDED.active"),
					"updated_at":      gorm.Expr("now()"),
					"search_vector":   gorm.Expr("to_tsvector('english', coalesce(EXCLUDED.title, '') || ' ' || coalesce(EXCLUDED.description, ''))"),
				}),
			}).Create(&batch).Error
		})
		if err != nil {
			return fmt.Errorf("upserting events batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// UpsertMarkets writes the incoming markets in the same per-batch statements
// as UpsertEvents (each batch commits on its own), applying the same merge
// rule, with event_id deliberately
// excluded from DoUpdates so the market path never overwrites it (§4.1.3).
func (s *Store) UpsertMarkets(ctx context.Context, markets []models.Market) error {
	if len(markets) == 0 {
		return nil
	}

	for start := 0; start < len(markets); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(markets) {
			end = len(markets)
		}
		batch := markets[start:end]

		err := withRetry(func() error {
			return s.db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"condition_id":      gorm.Expr("EXCLUDED.condition_id"),
					"question":          gorm.Expr("EXCLUDED.question"),
					"description":       gorm.Expr("EXCLUDED.description"),
					"slug":              gorm.Expr("EXCLUDED.slug"),
					"category":          gorm.Expr("EXCLUDED.category"),
					"outcomes":          gorm.Expr("EXCLUDED.outcomes"),
					"outcome_token_ids": gorm.Expr("EXCLUDED.outcome_token_ids"),
					"outcome_prices":    gorm.Expr("EXCLUDED.outcome_prices"),
					"best_bid":          gorm.Expr("EXCLUDED.best_bid"),
					"best_ask":          gorm.Expr("EXCLUDED.best_ask"),
					"spread":            gorm.Expr("EXCLUDED.spread"),
					"volume_all_time":   gorm.Expr("EXCLUDED.volume_all_time"),
					"volume_24h":        gorm.Expr("EXCLUDED.volume_24h"),
					"liquidity":         gorm.Expr("EXCLUDED.liquidity"),
					"end_date":          gorm.Expr("EXCLUDED.end_date"),
					"closed":            gorm.Expr("markets.closed OR EXCLUDED.closed"),
					"archived":          gorm.Expr("markets.archived OR EXCLUDED.archived"),
					"active":            gorm.Expr("(NOT (markets.closed OR EXCLUDED.closed OR markets.archived OR EXCLUDED.archived)) AND EXCLUDED.active"),
					"updated_at":        gorm.Expr("now()"),
					"search_vector":     gorm.Expr("to_tsvector('english', coalesce(EXCLUDED.question, '') || ' ' || coalesce(EXCLUDED.description, ''))"),
					// last_trade_price and event_id are intentionally absent:
					// the former is only ever set by verified trade ingestion,
					// the latter only by the event->market linkage pass.
				}),
			}).Create(&batch).Error
		})
		if err != nil {
			return fmt.Errorf("upserting markets batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// LinkMarketsToEvents applies the (market_id, event_id) pairs collected from
// an event page's nested markets array, in chunks of at most 5000, via a
// single UPDATE ... FROM (VALUES ...) statement per chunk (§4.1.4 step 2).
func (s *Store) LinkMarketsToEvents(ctx context.Context, pairs []catalog.LinkPair) error {
	const chunkSize = 5000
	if len(pairs) == 0 {
		return nil
	}

	for start := 0; start < len(pairs); start += chunkSize {
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]

		values := make([]interface{}, 0, len(chunk)*2)
		placeholders := make([]byte, 0, len(chunk)*8)
		for i, p := range chunk {
			if i > 0 {
				placeholders = append(placeholders, ',')
			}
			placeholders = append(placeholders, []byte("(?,?)")...)
			values = append(values, p.MarketID, p.EventID)
		}

		query := fmt.Sprintf(
			`UPDATE markets SET event_id = v.event_id, updated_at = now()
			 FROM (VALUES %s) AS v(market_id, event_id)
			 WHERE markets.id = v.market_id`,
			string(placeholders),
		)

		if err := s.db.WithContext(ctx).Exec(query, values...).Error; err != nil {
			return fmt.Errorf("linking markets to events [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// CountClosedMarkets reports the number of markets with closed=true, used by
// InitialSync to determine whether the database is "fresh" (§4.1.1).
func (s *Store) CountClosedMarkets(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Market{}).Where("closed = true").Count(&count).Error
	return count, err
}
