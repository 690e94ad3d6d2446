//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/bankai-project/indexer/internal/models"
	"github.com/bankai-project/indexer/internal/polymarket/catalog"
)

// TestExpirationAuditScope exercises spec scenario #5: an open market past
// its end_date is deactivated, while an already-closed market past its
// end_date is left untouched.
func TestExpirationAuditScope(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	open := models.Market{ID: "m-open", ConditionID: "c-open", Active: true, Closed: false, EndDate: &past}
	closed := models.Market{ID: "m-closed", ConditionID: "c-closed", Active: true, Closed: true, EndDate: &past}
	if err := s.UpsertMarkets(ctx, []models.Market{open, closed}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.ExpirationAudit(ctx); err != nil {
		t.Fatalf("audit: %v", err)
	}

	var gotOpen, gotClosed models.Market
	if err := s.DB().WithContext(ctx).First(&gotOpen, "id = ?", "m-open").Error; err != nil {
		t.Fatalf("reload open: %v", err)
	}
	if err := s.DB().WithContext(ctx).First(&gotClosed, "id = ?", "m-closed").Error; err != nil {
		t.Fatalf("reload closed: %v", err)
	}
	if gotOpen.Active {
		t.Fatal("expected the open, past-end-date market to be deactivated")
	}
	if !gotClosed.Active {
		t.Fatal("expected the already-closed market to remain unchanged by the audit")
	}
}

// TestExpirationAuditIdempotent exercises §8's "running the expiration audit
// twice in succession has the same effect as once" law.
func TestExpirationAuditIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	m := models.Market{ID: "m-idem", ConditionID: "c-idem", Active: true, Closed: false, EndDate: &past}
	if err := s.UpsertMarkets(ctx, []models.Market{m}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.ExpirationAudit(ctx); err != nil {
		t.Fatalf("first audit: %v", err)
	}
	var afterFirst models.Market
	if err := s.DB().WithContext(ctx).First(&afterFirst, "id = ?", "m-idem").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	if err := s.ExpirationAudit(ctx); err != nil {
		t.Fatalf("second audit: %v", err)
	}
	var afterSecond models.Market
	if err := s.DB().WithContext(ctx).First(&afterSecond, "id = ?", "m-idem").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	if afterFirst.Active != afterSecond.Active || afterFirst.Closed != afterSecond.Closed {
		t.Fatalf("second audit changed lifecycle flags: %+v -> %+v", afterFirst, afterSecond)
	}
}

// TestExpirationAuditOrphansEvent exercises the orphan-event pass: once every
// market under an event is non-live, the event itself deactivates too.
func TestExpirationAuditOrphansEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	eventID := "ev-orphan"
	if err := s.UpsertEvents(ctx, []models.Event{{ID: eventID, Title: "x", Active: true}}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	m := models.Market{ID: "m-orphan", ConditionID: "c-orphan", EventID: &eventID, Active: true, Closed: false, EndDate: &past}
	if err := s.UpsertMarkets(ctx, []models.Market{m}); err != nil {
		t.Fatalf("seed market: %v", err)
	}
	if err := s.LinkMarketsToEvents(ctx, []catalog.LinkPair{{MarketID: "m-orphan", EventID: eventID}}); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := s.ExpirationAudit(ctx); err != nil {
		t.Fatalf("audit: %v", err)
	}

	var ev models.Event
	if err := s.DB().WithContext(ctx).First(&ev, "id = ?", eventID).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if ev.Active {
		t.Fatal("expected the event to deactivate once its only market expired")
	}
}
