/**
 * @description
 * The Batch Sync Manager: paginated catalog sync, event->market linkage,
 * trade ingestion, the CLOB tradability audit, and the expiration audit
 * (§4.1). Each task is scheduled on its own ticker and guarded by one of the
 * store's per-entity advisory locks so overlapping runs of the same task are
 * dropped rather than queued.
 *
 * Grounded on the teacher's worker subscription loop (cmd/worker/main.go's
 * syncSubscriptions ticker), generalized from a single hardcoded 2-minute
 * refresh into one scheduling primitive reused for every task at its own
 * cadence and phase offset.
 *
 * @dependencies
 * - internal/store, internal/cache, internal/config, internal/logger
 * - internal/polymarket/{catalog,clob,trades}
 * - golang.org/x/sync/errgroup: bounded concurrency for the CLOB probe pass
 * - golang.org/x/time/rate: paces the CLOB probe pass, same idiom the
 *   AlejandroRuiz99-polybot reference client uses for its CLOB/Gamma calls
 */

package batchsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bankai-project/indexer/internal/cache"
	"github.com/bankai-project/indexer/internal/config"
	"github.com/bankai-project/indexer/internal/logger"
	"github.com/bankai-project/indexer/internal/models"
	"github.com/bankai-project/indexer/internal/polymarket/catalog"
	"github.com/bankai-project/indexer/internal/polymarket/clob"
	"github.com/bankai-project/indexer/internal/polymarket/trades"
	"github.com/bankai-project/indexer/internal/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	expirationAuditInterval = 60 * time.Second
	postStartupAuditDelay   = 2 * time.Minute
)

// Manager owns the catalog/trades/CLOB clients and drives every batch task
// on its own schedule.
type Manager struct {
	store       *store.Store
	catalogCl   *catalog.Client
	clobCl      *clob.Client
	tradesCl    *trades.Client
	invalidator *cache.Invalidator
	cfg         config.SyncConfig

	probeLimiter *rate.Limiter

	onMarketsRefreshed func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Manager from its upstream clients and the store/cache layer.
// The CLOB probe limiter is paced at one request per worker slot per second,
// so raising ClobAuditConcurrency scales both the fan-out and the ceiling on
// upstream call rate together.
func New(st *store.Store, catalogCl *catalog.Client, clobCl *clob.Client, tradesCl *trades.Client, inv *cache.Invalidator, cfg config.SyncConfig) *Manager {
	concurrency := cfg.ClobAuditConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Manager{
		store:        st,
		catalogCl:    catalogCl,
		clobCl:       clobCl,
		tradesCl:     tradesCl,
		invalidator:  inv,
		cfg:          cfg,
		probeLimiter: rate.NewLimiter(rate.Limit(concurrency), concurrency),
	}
}

// OnMarketsRefreshed registers a callback fired once after every successful
// markets sync pass, so the realtime manager can recompute its live token universe
// (§4.2.7).
func (m *Manager) OnMarketsRefreshed(fn func()) {
	m.onMarketsRefreshed = fn
}

// InitialSync runs once at startup: a fresh database (no closed markets yet)
// pulls both the closed=false and closed=true pages so historical markets
// are backfilled; an already-populated database only needs the live page
// (§4.1.1).
func (m *Manager) InitialSync(ctx context.Context) error {
	count, err := m.store.CountClosedMarkets(ctx)
	if err != nil {
		return fmt.Errorf("initial sync: checking freshness: %w", err)
	}
	fresh := count == 0

	if err := m.SyncEvents(ctx, fresh); err != nil {
		return err
	}
	if err := m.SyncMarkets(ctx, fresh); err != nil {
		return err
	}
	return nil
}

// Start launches every scheduled task as its own goroutine. Markets refresh
// on MarketsInterval starting immediately; events share the same interval
// but phase-shifted by half so the two passes don't contend for Redis/DB at
// the same instant. Trades only run when enabled; otherwise the trades
// sync_state row is marked disabled once at startup instead. The CLOB audit
// fires once postStartupAuditDelay after startup, then falls onto its own
// interval.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.loop(ctx, "markets", m.cfg.MarketsInterval, 0, func(ctx context.Context) error {
		return m.SyncMarkets(ctx, false)
	})

	m.wg.Add(1)
	go m.loop(ctx, "events", m.cfg.MarketsInterval, m.cfg.MarketsInterval/2, func(ctx context.Context) error {
		return m.SyncEvents(ctx, false)
	})

	if m.cfg.EnableTrades {
		m.wg.Add(1)
		go m.loop(ctx, "trades", m.cfg.TradesInterval, 0, m.SyncRecentTrades)
	} else if err := m.store.SetSyncStatus(ctx, "trades", "disabled"); err != nil {
		logger.Error("batchsync: failed to mark trades disabled: %v", err)
	}

	m.wg.Add(1)
	go m.loop(ctx, "expiration", expirationAuditInterval, 0, m.ExpirationAudit)

	m.wg.Add(1)
	go m.loop(ctx, "clob_audit", m.cfg.ClobAuditInterval, postStartupAuditDelay, m.AuditClobTradability)
}

// Stop cancels every scheduled task and waits for the in-flight pass of each
// to return.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Status returns the sync_state rows every scheduled task maintains, for the
// Orchestrator's aggregated status surface (§6).
func (m *Manager) Status(ctx context.Context) ([]models.SyncStateRow, error) {
	return m.store.GetSyncStates(ctx)
}

// loop runs fn once after initialDelay, then every interval until ctx is
// canceled. A single timer (rather than a ticker) lets the post-startup
// one-shot delay and the steady-state cadence share one code path.
func (m *Manager) loop(ctx context.Context, label string, interval, initialDelay time.Duration, fn func(context.Context) error) {
	defer m.wg.Done()

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := fn(ctx); err != nil {
				logger.Error("batchsync: %s pass failed: %v", label, err)
			}
			timer.Reset(interval)
		}
	}
}

// SyncEvents paginates the events endpoint, upserting each page through
// store.UpsertEvents (which does not apply a page atomically) and collecting
// (market_id, event_id) pairs for the linkage
// pass that follows once every page has landed (§4.1.1, §4.1.4).
func (m *Manager) SyncEvents(ctx context.Context, includeClosed bool) error {
	locked, err := m.store.TryLock(ctx, store.LockEvents)
	if err != nil {
		return err
	}
	if !locked {
		logger.Warn("batchsync: events sync already in flight, skipping")
		return nil
	}
	defer m.store.Unlock(ctx, store.LockEvents)

	if err := m.store.SetSyncStatus(ctx, "events", "syncing"); err != nil {
		logger.Error("batchsync: failed to mark events syncing: %v", err)
	}

	var allPairs []catalog.LinkPair
	missingTotal := 0

	for _, closed := range closedStates(includeClosed) {
		closed := closed
		offset := 0
		for {
			page, err := m.catalogCl.GetEvents(ctx, catalog.PageParams{
				Limit: m.cfg.MarketsBatchSize, Offset: offset, Closed: &closed,
			})
			if err != nil {
				m.store.SetSyncError(ctx, "events", err)
				return fmt.Errorf("fetching events page (closed=%v offset=%d): %w", closed, offset, err)
			}
			if len(page) == 0 {
				break
			}

			rows := make([]models.Event, 0, len(page))
			for _, e := range page {
				rows = append(rows, e.ToModel())
			}
			if err := m.store.UpsertEvents(ctx, rows); err != nil {
				m.store.SetSyncError(ctx, "events", err)
				return err
			}

			pairs, missing := catalog.CollectLinks(page)
			allPairs = append(allPairs, pairs...)
			missingTotal += missing

			offset += len(page)
			if len(page) < m.cfg.MarketsBatchSize {
				break
			}
		}
	}

	if missingTotal > 0 {
		logger.Warn("batchsync: %d events had no nested markets array, skipped for linkage", missingTotal)
	}

	if err := m.store.LinkMarketsToEvents(ctx, allPairs); err != nil {
		m.store.SetSyncError(ctx, "events", err)
		return err
	}

	if err := m.store.SetSyncStatus(ctx, "events", "idle"); err != nil {
		logger.Error("batchsync: failed to mark events idle: %v", err)
	}
	m.invalidator.InvalidateSyncPatterns(ctx)
	return nil
}

// SyncMarkets paginates the standalone markets endpoint, upserting each page
// through store.UpsertMarkets (which does not apply a page atomically), then
// invalidates caches and notifies the realtime
// manager so it can resubscribe to any newly-live tokens (§4.1.1, §4.2.7).
func (m *Manager) SyncMarkets(ctx context.Context, includeClosed bool) error {
	locked, err := m.store.TryLock(ctx, store.LockMarkets)
	if err != nil {
		return err
	}
	if !locked {
		logger.Warn("batchsync: markets sync already in flight, skipping")
		return nil
	}
	defer m.store.Unlock(ctx, store.LockMarkets)

	if err := m.store.SetSyncStatus(ctx, "markets", "syncing"); err != nil {
		logger.Error("batchsync: failed to mark markets syncing: %v", err)
	}

	for _, closed := range closedStates(includeClosed) {
		closed := closed
		offset := 0
		for {
			page, err := m.catalogCl.GetMarkets(ctx, catalog.PageParams{
				Limit: m.cfg.MarketsBatchSize, Offset: offset, Closed: &closed,
			})
			if err != nil {
				m.store.SetSyncError(ctx, "markets", err)
				return fmt.Errorf("fetching markets page (closed=%v offset=%d): %w", closed, offset, err)
			}
			if len(page) == 0 {
				break
			}

			rows := make([]models.Market, 0, len(page))
			for _, mk := range page {
				rows = append(rows, mk.ToModel())
			}
			if err := m.store.UpsertMarkets(ctx, rows); err != nil {
				m.store.SetSyncError(ctx, "markets", err)
				return err
			}

			offset += len(page)
			if len(page) < m.cfg.MarketsBatchSize {
				break
			}
		}
	}

	if err := m.store.SetSyncStatus(ctx, "markets", "idle"); err != nil {
		logger.Error("batchsync: failed to mark markets idle: %v", err)
	}
	m.invalidator.InvalidateSyncPatterns(ctx)
	m.invalidator.InvalidateDerivedSnapshots(ctx)

	if m.onMarketsRefreshed != nil {
		m.onMarketsRefreshed()
	}
	return nil
}

// closedStates returns the set of closed-filter values a sync pass should
// cover: just the live page normally, plus the closed page when a fresh
// database needs backfilling (§4.1.1).
func closedStates(includeClosed bool) []bool {
	if includeClosed {
		return []bool{false, true}
	}
	return []bool{false}
}

// SyncRecentTrades pulls the most recent page of the global trades feed,
// keeps only fills on currently-live tokens, and inserts them idempotently
// by content hash (§4.1.7).
func (m *Manager) SyncRecentTrades(ctx context.Context) error {
	locked, err := m.store.TryLock(ctx, store.LockTrades)
	if err != nil {
		return err
	}
	if !locked {
		logger.Warn("batchsync: trades sync already in flight, skipping")
		return nil
	}
	defer m.store.Unlock(ctx, store.LockTrades)

	if err := m.store.SetSyncStatus(ctx, "trades", "syncing"); err != nil {
		logger.Error("batchsync: failed to mark trades syncing: %v", err)
	}

	tokenToMarket, err := m.store.LiveTokenToMarket(ctx, m.cfg.TradesSyncMarketLimit)
	if err != nil {
		m.store.SetSyncError(ctx, "trades", err)
		return err
	}

	feed, err := m.tradesCl.GetFeed(ctx, m.cfg.TradesBatchSize, 0)
	if err != nil {
		m.store.SetSyncError(ctx, "trades", err)
		return err
	}

	rows := make([]models.TradeRecord, 0, len(feed))
	for _, t := range feed {
		marketID, ok := tokenToMarket[t.Asset]
		if !ok {
			continue
		}
		rows = append(rows, models.TradeRecord{
			ID:              trades.ContentID(t),
			AssetID:         t.Asset,
			MarketID:        marketID,
			Side:            t.Side,
			Price:           t.Price,
			Size:            t.Size,
			TransactionHash: t.TransactionHash,
			ProxyWallet:     t.ProxyWallet,
			ExecutedAt:      t.ExecutedAt(),
		})
	}

	if err := m.store.InsertTrades(ctx, rows); err != nil {
		m.store.SetSyncError(ctx, "trades", err)
		return err
	}

	if err := m.store.SetSyncStatus(ctx, "trades", "idle"); err != nil {
		logger.Error("batchsync: failed to mark trades idle: %v", err)
	}
	return nil
}

// closeResult is the outcome of one probeAndClose pass: the markets that
// were closed and the distinct parent events impacted, feeding pass 2.
type closeResult struct {
	marketIDs []string
	eventIDs  []string
}

// AuditClobTradability runs the two-pass CLOB tradability audit (§4.1.5):
// pass 1 probes the top-N-by-volume open markets plus any open market whose
// parent event already has both open and closed siblings locally; any market
// the CLOB no longer considers live is closed, which can in turn close its
// parent event; pass 2 then probes every remaining open market of any event
// touched by a closure in pass 1, since a sibling's closure can tip a mixed
// event over.
func (m *Manager) AuditClobTradability(ctx context.Context) error {
	lockedEvents, err := m.store.TryLock(ctx, store.LockEvents)
	if err != nil {
		return err
	}
	if !lockedEvents {
		logger.Warn("batchsync: clob audit skipped, events busy")
		return nil
	}
	defer m.store.Unlock(ctx, store.LockEvents)

	lockedMarkets, err := m.store.TryLock(ctx, store.LockMarkets)
	if err != nil {
		return err
	}
	if !lockedMarkets {
		logger.Warn("batchsync: clob audit skipped, markets busy")
		return nil
	}
	defer m.store.Unlock(ctx, store.LockMarkets)

	if err := m.store.SetSyncStatus(ctx, "clob_audit", "syncing"); err != nil {
		logger.Error("batchsync: failed to mark clob_audit syncing: %v", err)
	}

	candidates, err := m.store.AuditTopN(ctx, m.cfg.ClobAuditBatchSize)
	if err != nil {
		m.store.SetSyncError(ctx, "clob_audit", err)
		return err
	}
	mixed, err := m.store.MixedEventCandidates(ctx)
	if err != nil {
		m.store.SetSyncError(ctx, "clob_audit", err)
		return err
	}
	candidates = append(candidates, mixed...)

	first, err := m.probeAndClose(ctx, candidates)
	if err != nil {
		m.store.SetSyncError(ctx, "clob_audit", err)
		return err
	}

	if len(first.eventIDs) > 0 {
		siblings, err := m.store.OpenMarketsForEvents(ctx, first.eventIDs)
		if err != nil {
			m.store.SetSyncError(ctx, "clob_audit", err)
			return err
		}
		if _, err := m.probeAndClose(ctx, siblings); err != nil {
			m.store.SetSyncError(ctx, "clob_audit", err)
			return err
		}
	}

	if err := m.store.SetSyncStatus(ctx, "clob_audit", "idle"); err != nil {
		logger.Error("batchsync: failed to mark clob_audit idle: %v", err)
	}
	return nil
}

// probeAndClose fans the CLOB probe out over candidates with bounded
// concurrency, closes every market the CLOB no longer considers live in one
// transaction, and invalidates caches only when something actually changed.
// A single candidate's probe failure is logged and skipped rather than
// aborting the whole pass, since upstream hiccups on one market shouldn't
// block the rest.
func (m *Manager) probeAndClose(ctx context.Context, candidates []store.AuditCandidate) (closeResult, error) {
	if len(candidates) == 0 {
		return closeResult{}, nil
	}

	var mu sync.Mutex
	var toClose []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.ClobAuditConcurrency)

	for _, c := range candidates {
		c := c
		g.Go(func() error {
			if err := m.probeLimiter.Wait(gctx); err != nil {
				return err
			}
			state, err := m.clobCl.GetMarketState(gctx, c.ConditionID)
			if err != nil {
				logger.Warn("batchsync: clob probe failed for condition %s: %v", c.ConditionID, err)
				return nil
			}
			if !state.IsLive() {
				mu.Lock()
				toClose = append(toClose, c.MarketID)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return closeResult{}, err
	}

	if len(toClose) == 0 {
		return closeResult{}, nil
	}

	eventIDs, err := m.store.CloseMarketsAndImpactedEvents(ctx, toClose)
	if err != nil {
		return closeResult{}, err
	}

	m.invalidator.InvalidateSyncPatterns(ctx)
	m.invalidator.InvalidateDerivedSnapshots(ctx)

	return closeResult{marketIDs: toClose, eventIDs: eventIDs}, nil
}

// ExpirationAudit wraps the store's pure-SQL expiration sweep with the
// shared sync_state bookkeeping and cache invalidation (§4.1.6).
func (m *Manager) ExpirationAudit(ctx context.Context) error {
	if err := m.store.ExpirationAudit(ctx); err != nil {
		m.store.SetSyncError(ctx, "expiration", err)
		return err
	}
	if err := m.store.SetSyncStatus(ctx, "expiration", "idle"); err != nil {
		logger.Error("batchsync: failed to mark expiration idle: %v", err)
	}
	m.invalidator.InvalidateSyncPatterns(ctx)
	return nil
}
