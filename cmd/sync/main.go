/**
 * @description
 * One-shot manual catalog sync entrypoint: runs a single InitialSync pass
 * against real Postgres, backed by an in-memory Redis so the invalidator
 * has somewhere to write without a live Redis instance — useful for seeding
 * or repairing a database outside the long-running indexer process.
 *
 * Adapted from the teacher's cmd/sync/main.go (same miniredis-backed,
 * one-shot shape), retargeted at the batch sync manager's InitialSync
 * instead of the teacher's MarketService.SyncActiveMarkets/SyncFreshDrops.
 *
 * @dependencies
 * - github.com/alicebob/miniredis/v2, github.com/redis/go-redis/v9
 */

package main

import (
	"context"
	"log"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bankai-project/indexer/internal/batchsync"
	"github.com/bankai-project/indexer/internal/cache"
	"github.com/bankai-project/indexer/internal/config"
	"github.com/bankai-project/indexer/internal/db"
	"github.com/bankai-project/indexer/internal/models"
	"github.com/bankai-project/indexer/internal/polymarket/catalog"
	"github.com/bankai-project/indexer/internal/polymarket/clob"
	"github.com/bankai-project/indexer/internal/polymarket/trades"
	"github.com/bankai-project/indexer/internal/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("starting manual catalog sync")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("failed to start in-memory redis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	invalidator := cache.NewInvalidator(redisClient)

	catalogClient := catalog.NewClient(cfg.Polymarket.CatalogBaseURL, cfg.Polymarket.HTTPTimeout)
	clobClient := clob.NewClient(cfg.Polymarket.ClobBaseURL, nil, cfg.Polymarket.HTTPTimeout)
	tradesClient := trades.NewClient(cfg.Polymarket.DataBaseURL, cfg.Polymarket.HTTPTimeout)

	st := store.New(pgDB)
	batchMgr := batchsync.New(st, catalogClient, clobClient, tradesClient, invalidator, cfg.Sync)

	ctx := context.Background()
	if err := batchMgr.InitialSync(ctx); err != nil {
		log.Fatalf("initial sync failed: %v", err)
	}

	var activeCount int64
	if err := pgDB.Model(&models.Market{}).Where("active = ?", true).Count(&activeCount).Error; err == nil {
		log.Printf("active markets stored in postgres: %d", activeCount)
	} else {
		log.Printf("failed to count active markets: %v", err)
	}

	log.Println("manual catalog sync completed successfully")
}
