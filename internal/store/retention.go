/**
 * @description
 * Retention sweep deletes: chunked, rate-limited pruning of old Price
 * Samples and Trades (§4.6).
 *
 * @dependencies
 * - gorm.io/gorm
 */

package store

import (
	"context"
	"time"
)

const (
	retentionChunkSize  = 5000
	retentionChunkSleep = 100 * time.Millisecond
)

// DeletePriceSamplesOlderThan deletes Price Samples with instant older than
// cutoff, in chunks of 5000 rows with a 100ms pause between chunks to avoid
// holding long locks (§4.6).
func (s *Store) DeletePriceSamplesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteInChunks(ctx, `DELETE FROM price_samples WHERE ctid IN (
		SELECT ctid FROM price_samples WHERE instant < ? LIMIT ?
	)`, cutoff)
}

// DeleteTradesOlderThan deletes Trades with executed_at older than cutoff,
// in the same chunked pattern, used only when trade ingestion is enabled.
func (s *Store) DeleteTradesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteInChunks(ctx, `DELETE FROM trades WHERE ctid IN (
		SELECT ctid FROM trades WHERE executed_at < ? LIMIT ?
	)`, cutoff)
}

func (s *Store) deleteInChunks(ctx context.Context, query string, cutoff time.Time) (int64, error) {
	var total int64
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		tx := s.db.WithContext(ctx).Exec(query, cutoff, retentionChunkSize)
		if tx.Error != nil {
			return total, tx.Error
		}
		total += tx.RowsAffected
		if tx.RowsAffected < retentionChunkSize {
			return total, nil
		}

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(retentionChunkSleep):
		}
	}
}
