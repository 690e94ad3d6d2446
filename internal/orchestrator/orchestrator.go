/**
 * @description
 * The Orchestrator: wires the Batch Sync Manager, the Realtime Sync Manager,
 * the Backfill Manager, and the retention sweep into one start/stop unit,
 * and aggregates their sync_state rows into a single status report (§4.5).
 *
 * Grounded on the teacher's cmd/worker/main.go main(): the same
 * connect-clients-then-launch-goroutines-then-wait-for-signal shape, pulled
 * out of main() into its own reusable type so cmd/indexer only has to wire
 * dependencies and call Start/Stop.
 *
 * @dependencies
 * - internal/batchsync, internal/realtime, internal/backfill, internal/store
 * - internal/config, internal/logger
 */

package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bankai-project/indexer/internal/backfill"
	"github.com/bankai-project/indexer/internal/batchsync"
	"github.com/bankai-project/indexer/internal/config"
	"github.com/bankai-project/indexer/internal/logger"
	"github.com/bankai-project/indexer/internal/realtime"
	"github.com/bankai-project/indexer/internal/store"
)

// retentionStartupDelay and retentionInterval drive the retention sweep
// schedule (§4.6): once after startup, then daily.
const (
	retentionStartupDelay = 5 * time.Minute
	retentionInterval     = 24 * time.Hour
)

// EntityStatus is one row of the aggregated status report: a sync_state row
// plus staleness computed against the configured threshold.
type EntityStatus struct {
	Entity       string     `json:"entity"`
	Status       string     `json:"status"`
	LastSyncAt   *time.Time `json:"last_sync_at"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Stale        bool       `json:"stale"`
}

// Report is the Orchestrator's full aggregated status (§13).
type Report struct {
	Ready    bool           `json:"ready"`
	Entities []EntityStatus `json:"entities"`
}

// Orchestrator owns the lifecycle of every background task.
type Orchestrator struct {
	store    *store.Store
	batch    *batchsync.Manager
	realtime *realtime.Manager
	backfill *backfill.Manager
	cfg      config.SyncConfig

	ready  atomic.Bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the three managers together: batch's MarketsRefreshed signal is
// connected to realtime's Resubscribe (§4.2.7).
func New(st *store.Store, batch *batchsync.Manager, rt *realtime.Manager, bf *backfill.Manager, cfg config.SyncConfig) *Orchestrator {
	o := &Orchestrator{store: st, batch: batch, realtime: rt, backfill: bf, cfg: cfg}

	batch.OnMarketsRefreshed(func() {
		if err := rt.Resubscribe(context.Background()); err != nil {
			logger.Error("orchestrator: resubscribe after markets refresh failed: %v", err)
		}
	})

	return o
}

// Start verifies the schema, runs InitialSync once synchronously, then
// launches the batch timers, the realtime manager, the backfill sweep, and
// the retention sweep (§4.5). InitialSync must succeed before Start returns,
// since a missing schema is the one fatal condition in the system (§7);
// every background task started afterward retries its own failures on its
// own schedule instead of crashing the process.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.store.VerifySchema(ctx); err != nil {
		return err
	}

	if err := o.batch.InitialSync(ctx); err != nil {
		return err
	}
	o.ready.Store(true)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.batch.Start(ctx)

	if err := o.realtime.Start(ctx); err != nil {
		return err
	}

	o.wg.Add(1)
	go o.backfillLoop(ctx)

	o.wg.Add(1)
	go o.retentionLoop(ctx)

	return nil
}

// Stop cancels the retention sweep and backfill loop, stops the batch
// timers, shuts down the realtime manager (flushing any pending buffer and
// closing its sockets), and waits for everything to exit (§4.5).
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.batch.Stop()
	o.realtime.Stop()
	o.wg.Wait()
}

// Ready reports whether InitialSync has completed at least once, the signal
// the status surface's /healthz endpoint uses (§13).
func (o *Orchestrator) Ready() bool {
	return o.ready.Load()
}

// Status aggregates every tracked entity's sync_state row with staleness
// computed against SyncStaleThreshold (§4.5, §6).
func (o *Orchestrator) Status(ctx context.Context) (Report, error) {
	rows, err := o.store.GetSyncStates(ctx)
	if err != nil {
		return Report{}, err
	}

	now := time.Now()
	entities := make([]EntityStatus, 0, len(rows))
	for _, r := range rows {
		entities = append(entities, EntityStatus{
			Entity:       r.Entity,
			Status:       r.Status,
			LastSyncAt:   r.LastSyncAt,
			ErrorMessage: r.ErrorMessage,
			Stale:        r.IsStale(now, o.cfg.SyncStaleThreshold),
		})
	}

	return Report{Ready: o.Ready(), Entities: entities}, nil
}

// backfillLoop runs BackfillMissing once shortly after InitialSync, then on
// the same cadence as the CLOB audit — both are best-effort sweeps over the
// live market set, lower priority than the catalog/trade/realtime paths.
func (o *Orchestrator) backfillLoop(ctx context.Context) {
	defer o.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := o.backfill.BackfillMissing(ctx); err != nil {
				logger.Error("orchestrator: backfill sweep failed: %v", err)
			}
			timer.Reset(o.cfg.ClobAuditInterval)
		}
	}
}

// retentionLoop prunes Price Samples (and Trades, when ingestion is enabled)
// older than their configured retention windows, once after a startup delay
// and then daily (§4.6).
func (o *Orchestrator) retentionLoop(ctx context.Context) {
	defer o.wg.Done()

	timer := time.NewTimer(retentionStartupDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			o.runRetentionSweep(ctx)
			timer.Reset(retentionInterval)
		}
	}
}

func (o *Orchestrator) runRetentionSweep(ctx context.Context) {
	priceCutoff := time.Now().AddDate(0, 0, -o.cfg.PriceHistoryRetentionDays)
	if n, err := o.store.DeletePriceSamplesOlderThan(ctx, priceCutoff); err != nil {
		logger.Error("orchestrator: price sample retention sweep failed: %v", err)
	} else if n > 0 {
		logger.Info("orchestrator: retention sweep deleted %d price samples older than %s", n, priceCutoff.Format(time.RFC3339))
	}

	if !o.cfg.EnableTrades {
		return
	}
	tradeCutoff := time.Now().AddDate(0, 0, -o.cfg.TradesRetentionDays)
	if n, err := o.store.DeleteTradesOlderThan(ctx, tradeCutoff); err != nil {
		logger.Error("orchestrator: trade retention sweep failed: %v", err)
	} else if n > 0 {
		logger.Info("orchestrator: retention sweep deleted %d trades older than %s", n, tradeCutoff.Format(time.RFC3339))
	}
}
