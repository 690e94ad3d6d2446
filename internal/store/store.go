/**
 * @description
 * The relational store: a thin wrapper over *gorm.DB providing the
 * transactional batched upserts, advisory-lock-based per-entity
 * mutual exclusion, and schema verification the sync managers depend on.
 *
 * Grounded on the teacher's MarketService, which talked to *gorm.DB directly
 * from the service layer; here that data-access surface is pulled out into
 * its own package so the batch/realtime/backfill managers share one
 * implementation instead of duplicating upsert/lock logic per caller.
 *
 * @dependencies
 * - gorm.io/gorm
 * - gorm.io/driver/postgres (via the *gorm.DB passed in)
 * - github.com/jackc/pgconn: serialization-failure/deadlock retry classification
 */

package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

// Advisory lock keys for the three per-entity mutual-exclusion flags (§4.1.2).
// Arbitrary distinct constants; only uniqueness within this process's lock
// namespace matters.
const (
	LockEvents  int64 = 84001
	LockMarkets int64 = 84002
	LockTrades  int64 = 84003
)

// requiredTables is the set of tables VerifySchema checks for at startup.
var requiredTables = []string{"events", "markets", "price_samples", "trades", "sync_state"}

// Store is the relational persistence layer for the indexer core.
type Store struct {
	db *gorm.DB
}

// New wraps an already-connected *gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for callers that need raw access
// (e.g. the integration tests' direct row reads).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// VerifySchema fails fast if the store is not already migrated. Per §7, this
// is the one fatal condition in the system — every other failure is
// recoverable by retry.
func (s *Store) VerifySchema(ctx context.Context) error {
	for _, table := range requiredTables {
		var exists bool
		err := s.db.WithContext(ctx).
			Raw(`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?)`, table).
			Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("schema verification: querying for table %q: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("schema verification: table %q is missing; run migrations before starting the indexer", table)
		}
	}
	return nil
}

// TryLock attempts to acquire a process-local-scoped Postgres advisory lock
// for one of the Lock* keys. It returns false, nil when another invocation
// already holds it (§4.1.2: a second invocation is dropped, not queued).
func (s *Store) TryLock(ctx context.Context, key int64) (bool, error) {
	var locked bool
	err := s.db.WithContext(ctx).Raw("SELECT pg_try_advisory_lock(?)", key).Scan(&locked).Error
	if err != nil {
		return false, err
	}
	return locked, nil
}

// Unlock releases a previously-acquired advisory lock.
func (s *Store) Unlock(ctx context.Context, key int64) {
	if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_unlock(?)", key).Error; err != nil {
		// Nothing more useful to do with a failed unlock; the session-scoped
		// lock is released automatically when the connection returns to the pool.
		_ = err
	}
}

// withRetry retries a batched write a bounded number of times on Postgres
// serialization failures and deadlocks (40001 / 40P01), mirroring the
// teacher's PersistActiveMarkets retry loop.
func withRetry(fn func() error) error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if ok := asPgError(err, &pgErr); ok && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
			backoff := time.Duration(attempt*100+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		return err
	}
	return fmt.Errorf("exceeded retry attempts: %w", err)
}

func asPgError(err error, target **pgconn.PgError) bool {
	for err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			*target = pgErr
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
