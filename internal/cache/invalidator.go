/**
 * @description
 * Pattern-based cache invalidation: a SCAN+DEL sweep over a glob pattern,
 * called after successful syncs and CLOB/expiration state changes (§6 cache
 * invalidation hook).
 *
 * Grounded on the teacher's direct *redis.Client usage throughout
 * market_service.go (context-scoped calls, redis.Nil handling); this pulls
 * that style into a small dedicated invalidator instead of ad hoc Del calls
 * scattered through the sync managers.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 */

package cache

import (
	"context"

	"github.com/bankai-project/indexer/internal/logger"
	"github.com/redis/go-redis/v9"
)

// scanBatchSize bounds how many keys SCAN returns per cursor iteration.
const scanBatchSize = 200

// Invalidator deletes cached keys matching a glob pattern.
type Invalidator struct {
	rdb *redis.Client
}

// NewInvalidator wraps an already-connected Redis client.
func NewInvalidator(rdb *redis.Client) *Invalidator {
	return &Invalidator{rdb: rdb}
}

// InvalidatePattern deletes every key matching pattern (e.g. "*GET:/markets*"),
// walking the keyspace with SCAN rather than KEYS to avoid blocking Redis on
// a large keyspace.
func (inv *Invalidator) InvalidatePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := inv.rdb.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := inv.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		logger.Info("cache: invalidated %d keys matching %q", deleted, pattern)
	}
	return nil
}

// InvalidateSyncPatterns runs the three mandated glob invalidations after a
// successful catalog sync or a CLOB/expiration state change (§4.1.5 step 7).
func (inv *Invalidator) InvalidateSyncPatterns(ctx context.Context) {
	patterns := []string{"*GET:/markets*", "*GET:/events*", "*GET:/stats*"}
	for _, p := range patterns {
		if err := inv.InvalidatePattern(ctx, p); err != nil {
			logger.Warn("cache: invalidating pattern %q failed: %v", p, err)
		}
	}
}

// InvalidateDerivedSnapshots drops any derived-snapshot keys an external
// query API might maintain (category/tag breakdowns, market "lanes"), per
// the SUPPLEMENTED FEATURES extension: the core only needs to be able to
// ask for invalidation, not own the snapshots themselves.
func (inv *Invalidator) InvalidateDerivedSnapshots(ctx context.Context) {
	patterns := []string{"*markets:meta*", "*markets:lanes*"}
	for _, p := range patterns {
		if err := inv.InvalidatePattern(ctx, p); err != nil {
			logger.Warn("cache: invalidating derived-snapshot pattern %q failed: %v", p, err)
		}
	}
}
