/**
 * @description
 * Indexer process entry point: loads configuration, connects Postgres and
 * Redis, builds the upstream REST clients and the store/cache layer, wires
 * the Batch Sync / Realtime / Backfill managers into the Orchestrator,
 * starts the status surface, and blocks until SIGINT/SIGTERM.
 *
 * Grounded on the teacher's cmd/worker/main.go (connect DBs, build clients,
 * launch background work, signal.Notify, graceful cancel) combined with
 * cmd/api/main.go's fiber.Listen pattern for the status surface.
 *
 * @dependencies
 * - internal/config, internal/db, internal/logger
 * - internal/polymarket/{catalog,clob,trades,pricehistory}
 * - internal/store, internal/cache, internal/batchsync, internal/realtime,
 *   internal/backfill, internal/orchestrator, internal/statusapi
 * - github.com/gofiber/fiber/v2
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bankai-project/indexer/internal/backfill"
	"github.com/bankai-project/indexer/internal/batchsync"
	"github.com/bankai-project/indexer/internal/cache"
	"github.com/bankai-project/indexer/internal/config"
	"github.com/bankai-project/indexer/internal/db"
	"github.com/bankai-project/indexer/internal/httpkit"
	"github.com/bankai-project/indexer/internal/logger"
	"github.com/bankai-project/indexer/internal/orchestrator"
	"github.com/bankai-project/indexer/internal/polymarket/catalog"
	"github.com/bankai-project/indexer/internal/polymarket/clob"
	"github.com/bankai-project/indexer/internal/polymarket/pricehistory"
	"github.com/bankai-project/indexer/internal/polymarket/trades"
	"github.com/bankai-project/indexer/internal/realtime"
	"github.com/bankai-project/indexer/internal/statusapi"
	"github.com/bankai-project/indexer/internal/store"
)

func main() {
	logger.Info("starting indexer")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("postgres connection failed: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("redis connection failed: %v", err)
	}

	var creds *httpkit.Credentials
	if cfg.Polymarket.Address != "" {
		creds = &httpkit.Credentials{
			Address:    cfg.Polymarket.Address,
			APIKey:     cfg.Polymarket.APIKey,
			Secret:     cfg.Polymarket.Secret,
			Passphrase: cfg.Polymarket.Passphrase,
		}
	}

	catalogClient := catalog.NewClient(cfg.Polymarket.CatalogBaseURL, cfg.Polymarket.HTTPTimeout)
	clobClient := clob.NewClient(cfg.Polymarket.ClobBaseURL, creds, cfg.Polymarket.HTTPTimeout)
	tradesClient := trades.NewClient(cfg.Polymarket.DataBaseURL, cfg.Polymarket.HTTPTimeout)
	historyClient := pricehistory.NewClient(cfg.Polymarket.ClobBaseURL, cfg.Polymarket.HTTPTimeout)

	st := store.New(pgDB)
	invalidator := cache.NewInvalidator(redisClient)
	gauge := cache.NewBufferGauge(invalidator)

	batchMgr := batchsync.New(st, catalogClient, clobClient, tradesClient, invalidator, cfg.Sync)
	realtimeMgr := realtime.New(st, gauge, cfg.Sync)
	backfillMgr := backfill.New(st, historyClient)

	orch := orchestrator.New(st, batchMgr, realtimeMgr, backfillMgr, cfg.Sync)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := orch.Start(ctx); err != nil {
		logger.Fatal("orchestrator failed to start: %v", err)
	}

	statusApp := statusapi.New(orch)
	go func() {
		if err := statusApp.Listen(":" + cfg.Server.Port); err != nil {
			logger.Error("status surface stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down indexer")
	cancel()
	orch.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := statusApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("status surface shutdown error: %v", err)
	}

	logger.Info("indexer exited")
}
