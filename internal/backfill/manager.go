/**
 * @description
 * The Backfill Manager: one-shot per-market historical price import from the
 * price-history endpoint (§4.4), plus the sweep that finds active markets
 * with no Price Samples at all and backfills them.
 *
 * Grounded on the teacher's history-fetch path in market_service.go
 * (GetPriceHistory: single-series fetch + Redis cache), generalized from one
 * token's history into the binary/single/N>2 fan-out the spec requires, with
 * the teacher's cache-before-fetch idea repurposed into in-flight call
 * coalescing per (market_id, interval) instead of a result cache.
 *
 * @dependencies
 * - internal/store, internal/polymarket/pricehistory, internal/logger
 */

package backfill

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bankai-project/indexer/internal/logger"
	"github.com/bankai-project/indexer/internal/models"
	"github.com/bankai-project/indexer/internal/polymarket/pricehistory"
	"github.com/bankai-project/indexer/internal/store"
)

// missingSweepLimit is the BackfillMissing page size (§4.4).
const missingSweepLimit = 100

// missingSweepSpacing is the pause between successive BackfillMarket calls
// inside BackfillMissing, to avoid bursting the upstream history endpoint.
const missingSweepSpacing = 100 * time.Millisecond

// Manager owns the price-history client and in-flight call coalescing.
type Manager struct {
	store *store.Store
	hist  *pricehistory.Client

	mu       sync.Mutex
	inFlight map[string]*inFlightCall
}

type inFlightCall struct {
	done chan struct{}
	err  error
}

// New builds a Manager from the price-history client and the store.
func New(st *store.Store, hist *pricehistory.Client) *Manager {
	return &Manager{
		store:    st,
		hist:     hist,
		inFlight: make(map[string]*inFlightCall),
	}
}

// BackfillMarket fetches the price history for market's primary token(s) at
// interval and writes it as Price Samples. Binary markets (exactly two
// outcome tokens) record both sides of each point; single-token markets
// record one sample per point; markets with more than two tokens record
// only the primary (first) token's series and log a warning, since the
// upstream history endpoint only ever reports one series per request
// (§4.4). Concurrent calls for the same (market_id, interval) are coalesced
// into a single upstream fetch; all callers receive the same result.
func (m *Manager) BackfillMarket(ctx context.Context, mkt models.Market, interval pricehistory.Interval) error {
	key := fmt.Sprintf("%s|%s", mkt.ID, interval)

	m.mu.Lock()
	if call, ok := m.inFlight[key]; ok {
		m.mu.Unlock()
		<-call.done
		return call.err
	}
	call := &inFlightCall{done: make(chan struct{})}
	m.inFlight[key] = call
	m.mu.Unlock()

	err := m.doBackfill(ctx, mkt, interval)

	m.mu.Lock()
	delete(m.inFlight, key)
	m.mu.Unlock()

	call.err = err
	close(call.done)
	return err
}

func (m *Manager) doBackfill(ctx context.Context, mkt models.Market, interval pricehistory.Interval) error {
	tokens := mkt.OutcomeTokenIDs
	if len(tokens) == 0 {
		return fmt.Errorf("backfill: market %s has no outcome tokens", mkt.ID)
	}

	primary := tokens[0]
	points, err := m.hist.GetHistory(ctx, primary, interval)
	if err != nil {
		return fmt.Errorf("backfill: fetching history for market %s token %s: %w", mkt.ID, primary, err)
	}
	if len(points) == 0 {
		return nil
	}

	if len(tokens) > 2 {
		logger.Warn("backfill: market %s has %d outcome tokens, recording only the primary token's series", mkt.ID, len(tokens))
	}

	samples := buildSamples(mkt.ID, tokens, points)
	return m.store.InsertPriceSamples(ctx, samples)
}

// buildSamples implements the §4.4 fan-out rule: binary markets (exactly two
// outcome tokens) produce two samples per point, `(token0, p)` and
// `(token1, 1-p)`; any other token count records only the primary (first)
// token's series, one sample per point.
func buildSamples(marketID string, tokens models.StringArray, points []pricehistory.Point) []models.PriceSample {
	primary := tokens[0]
	samples := make([]models.PriceSample, 0, len(points)*2)

	if len(tokens) == 2 {
		secondary := tokens[1]
		for _, pt := range points {
			instant := time.Unix(int64(pt.T), 0).UTC()
			samples = append(samples,
				models.PriceSample{MarketID: marketID, TokenID: primary, Instant: instant, Price: pt.P, Source: "clob"},
				models.PriceSample{MarketID: marketID, TokenID: secondary, Instant: instant, Price: 1 - pt.P, Source: "clob"},
			)
		}
		return samples
	}

	for _, pt := range points {
		samples = append(samples, models.PriceSample{
			MarketID: marketID, TokenID: primary,
			Instant: time.Unix(int64(pt.T), 0).UTC(), Price: pt.P, Source: "clob",
		})
	}
	return samples
}

// BackfillMissing selects up to missingSweepLimit active markets with no
// Price Samples at all, ordered by descending 24h volume, and backfills
// each with missingSweepSpacing between calls (§4.4).
func (m *Manager) BackfillMissing(ctx context.Context) error {
	markets, err := m.store.MarketsWithoutPriceSamples(ctx, missingSweepLimit)
	if err != nil {
		return fmt.Errorf("backfill: listing markets without price samples: %w", err)
	}

	for i, mkt := range markets {
		if err := m.BackfillMarket(ctx, mkt, pricehistory.IntervalMax); err != nil {
			logger.Error("backfill: market %s failed: %v", mkt.ID, err)
		}

		if i < len(markets)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(missingSweepSpacing):
			}
		}
	}
	return nil
}
