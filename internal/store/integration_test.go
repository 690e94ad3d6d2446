//go:build integration

/**
 * @description
 * Shared setup for the store package's integration suite. These tests hit a
 * live Postgres instance (no sql-mock precedent exists anywhere in the
 * example pack for the advisory-lock/information_schema/clause.OnConflict
 * surface this package leans on) and are excluded from `go test ./...` by
 * the integration build tag, following the same tag-gated pattern the
 * mselser95-polymarket-arb reference repo uses for its own end-to-end suite.
 *
 * Run with: go test -tags=integration ./internal/store/... (TEST_DATABASE_URL
 * pointing at a disposable Postgres database).
 *
 * @dependencies
 * - gorm.io/gorm, gorm.io/driver/postgres
 */

package store

import (
	"os"
	"testing"

	"github.com/bankai-project/indexer/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestStore connects to TEST_DATABASE_URL, migrates the tables these tests
// touch, and truncates them so each test starts from an empty schema.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping store integration test")
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := db.AutoMigrate(&models.Event{}, &models.Market{}, &models.PriceSample{}, &models.SyncStateRow{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	for _, table := range []string{"price_samples", "markets", "events", "sync_state"} {
		if err := db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	return New(db)
}
