package realtime

import (
	"testing"
	"time"

	"github.com/bankai-project/indexer/internal/store"
)

func newTestManager() *Manager {
	return &Manager{
		buffer:        make(map[string]store.BufferedPrice),
		tokenToMarket: make(map[string]string),
	}
}

func TestOnPriceUpdateIgnoresUnknownToken(t *testing.T) {
	m := newTestManager()
	m.onPriceUpdate("unknown-token", 0.5)

	if len(m.buffer) != 0 {
		t.Fatalf("expected unknown token to be dropped, buffer = %v", m.buffer)
	}
}

func TestOnPriceUpdateBuffersKnownToken(t *testing.T) {
	m := newTestManager()
	m.tokenToMarket["t_yes"] = "mkt-1"

	m.onPriceUpdate("t_yes", 0.65)

	buffered, ok := m.buffer["t_yes"]
	if !ok {
		t.Fatal("expected t_yes to be buffered")
	}
	if buffered.MarketID != "mkt-1" || buffered.Price != 0.65 {
		t.Fatalf("unexpected buffered entry: %+v", buffered)
	}
}

func TestOnPriceUpdateOverwritesEarlierUnsentEntry(t *testing.T) {
	m := newTestManager()
	m.tokenToMarket["t_yes"] = "mkt-1"

	m.onPriceUpdate("t_yes", 0.60)
	m.onPriceUpdate("t_yes", 0.70)

	if len(m.buffer) != 1 {
		t.Fatalf("expected a single overwritten entry, got %d", len(m.buffer))
	}
	if m.buffer["t_yes"].Price != 0.70 {
		t.Fatalf("expected latest price to win, got %v", m.buffer["t_yes"].Price)
	}
}

func TestOnAggregateStatusOnlyFlagsChange(t *testing.T) {
	m := newTestManager()

	var calls int
	m.statusMu.Lock()
	m.lastConnected = nil
	m.statusMu.Unlock()

	// record replays onAggregateStatus's change-detection step on the
	// Manager's own fields; onAggregateStatus itself is not called, since it
	// writes through m.store, which is nil in this test.
	record := func(connected bool) {
		m.statusMu.Lock()
		changed := m.lastConnected == nil || *m.lastConnected != connected
		m.lastConnected = &connected
		m.statusMu.Unlock()
		if changed {
			calls++
		}
	}

	record(true)
	record(true)
	record(false)
	record(false)
	record(true)

	if calls != 3 {
		t.Fatalf("expected 3 actual transitions (true, false, true), got %d", calls)
	}
}

func TestFlushSkipsEmptyBuffer(t *testing.T) {
	m := newTestManager()
	// flush() would dereference m.store on a non-empty buffer; an empty
	// buffer must return before that happens.
	m.flush(nil)
	if len(m.buffer) != 0 {
		t.Fatalf("expected buffer to remain empty: %v", m.buffer)
	}
}

func TestFlushSkipsWhenAlreadyFlushing(t *testing.T) {
	m := newTestManager()
	m.tokenToMarket["t_yes"] = "mkt-1"
	m.buffer["t_yes"] = store.BufferedPrice{MarketID: "mkt-1", TokenID: "t_yes", Price: 0.5, Instant: time.Now()}

	m.flushing.Lock()
	defer m.flushing.Unlock()

	// With flushing already held, flush() must return immediately (TryLock
	// fails) rather than touching m.store, which is nil in this test.
	m.flush(nil)

	if len(m.buffer) != 1 {
		t.Fatalf("expected buffer untouched while a flush is already in progress, got %v", m.buffer)
	}
}
