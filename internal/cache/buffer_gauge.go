/**
 * @description
 * A tiny Redis-backed gauge for the realtime manager's price buffer size,
 * used to throttle the soft-size warning (§4.2.5 step 6) to at most once per
 * window instead of once per flush tick, and to expose the current size for
 * external observability.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 */

package cache

import (
	"context"
	"strconv"
	"time"
)

const (
	bufferSizeKey   = "realtime:buffer_size"
	bufferWarnKey   = "realtime:buffer_warn_lock"
	bufferWarnTTL   = 60 * time.Second
)

// BufferGauge reports the realtime price buffer's current size and throttles
// repeated soft-size warnings.
type BufferGauge struct {
	inv *Invalidator
}

// NewBufferGauge builds a gauge sharing the invalidator's Redis client.
func NewBufferGauge(inv *Invalidator) *BufferGauge {
	return &BufferGauge{inv: inv}
}

// Report records the current buffer size and returns whether a soft-size
// warning should be logged this tick (true at most once per bufferWarnTTL).
func (g *BufferGauge) Report(ctx context.Context, size int, softLimit int) (bool, error) {
	if err := g.inv.rdb.Set(ctx, bufferSizeKey, strconv.Itoa(size), 0).Err(); err != nil {
		return false, err
	}
	if size < softLimit {
		return false, nil
	}

	acquired, err := g.inv.rdb.SetNX(ctx, bufferWarnKey, "1", bufferWarnTTL).Result()
	if err != nil {
		return false, err
	}
	return acquired, nil
}
