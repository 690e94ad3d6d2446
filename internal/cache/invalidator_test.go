package cache

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestInvalidator(t *testing.T) (*Invalidator, *redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewInvalidator(rdb), rdb, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestInvalidatePatternDeletesMatchingKeys(t *testing.T) {
	inv, rdb, cleanup := newTestInvalidator(t)
	defer cleanup()

	ctx := context.Background()
	rdb.Set(ctx, "GET:/markets?a=1", "x", 0)
	rdb.Set(ctx, "GET:/markets?b=2", "x", 0)
	rdb.Set(ctx, "GET:/events?a=1", "x", 0)

	if err := inv.InvalidatePattern(ctx, "GET:/markets*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	if n, _ := rdb.Exists(ctx, "GET:/markets?a=1").Result(); n != 0 {
		t.Fatal("expected matching key to be deleted")
	}
	if n, _ := rdb.Exists(ctx, "GET:/markets?b=2").Result(); n != 0 {
		t.Fatal("expected matching key to be deleted")
	}
	if n, _ := rdb.Exists(ctx, "GET:/events?a=1").Result(); n != 1 {
		t.Fatal("expected non-matching key to survive")
	}
}

func TestInvalidatePatternNoMatches(t *testing.T) {
	inv, _, cleanup := newTestInvalidator(t)
	defer cleanup()

	if err := inv.InvalidatePattern(context.Background(), "nothing:matches:*"); err != nil {
		t.Fatalf("expected no error when nothing matches, got %v", err)
	}
}

func TestInvalidateSyncPatternsSweepsAllThreeGlobs(t *testing.T) {
	inv, rdb, cleanup := newTestInvalidator(t)
	defer cleanup()

	ctx := context.Background()
	rdb.Set(ctx, "cache:GET:/markets?x", "1", 0)
	rdb.Set(ctx, "cache:GET:/events?x", "1", 0)
	rdb.Set(ctx, "cache:GET:/stats?x", "1", 0)
	rdb.Set(ctx, "cache:GET:/unrelated?x", "1", 0)

	inv.InvalidateSyncPatterns(ctx)

	for _, key := range []string{"cache:GET:/markets?x", "cache:GET:/events?x", "cache:GET:/stats?x"} {
		if n, _ := rdb.Exists(ctx, key).Result(); n != 0 {
			t.Fatalf("expected %q to be invalidated", key)
		}
	}
	if n, _ := rdb.Exists(ctx, "cache:GET:/unrelated?x").Result(); n != 1 {
		t.Fatal("expected unrelated key to survive")
	}
}

func TestInvalidateDerivedSnapshotsSweepsBothGlobs(t *testing.T) {
	inv, rdb, cleanup := newTestInvalidator(t)
	defer cleanup()

	ctx := context.Background()
	rdb.Set(ctx, "markets:meta:category", "1", 0)
	rdb.Set(ctx, "markets:lanes:featured", "1", 0)
	rdb.Set(ctx, "markets:detail:123", "1", 0)

	inv.InvalidateDerivedSnapshots(ctx)

	if n, _ := rdb.Exists(ctx, "markets:meta:category").Result(); n != 0 {
		t.Fatal("expected meta snapshot key to be invalidated")
	}
	if n, _ := rdb.Exists(ctx, "markets:lanes:featured").Result(); n != 0 {
		t.Fatal("expected lanes snapshot key to be invalidated")
	}
	if n, _ := rdb.Exists(ctx, "markets:detail:123").Result(); n != 1 {
		t.Fatal("expected unrelated detail key to survive")
	}
}
