package trades

import "testing"

func TestContentIDIsDeterministic(t *testing.T) {
	trade := Trade{
		Asset:           "t_yes",
		Side:            "BUY",
		Price:           0.65,
		Size:            100,
		Timestamp:       1700000000,
		TransactionHash: "0xabc",
		ProxyWallet:     "0xdef",
	}

	id1 := ContentID(trade)
	id2 := ContentID(trade)
	if id1 != id2 {
		t.Fatalf("ContentID not deterministic: %q vs %q", id1, id2)
	}
	if len(id1) != 64 {
		t.Fatalf("expected 64-char hex keccak256 digest, got %d chars: %q", len(id1), id1)
	}
}

func TestContentIDDiffersOnAnyFieldChange(t *testing.T) {
	base := Trade{
		Asset: "t_yes", Side: "BUY", Price: 0.65, Size: 100,
		Timestamp: 1700000000, TransactionHash: "0xabc", ProxyWallet: "0xdef",
	}
	baseID := ContentID(base)

	variants := []Trade{
		{Asset: "t_no", Side: base.Side, Price: base.Price, Size: base.Size, Timestamp: base.Timestamp, TransactionHash: base.TransactionHash, ProxyWallet: base.ProxyWallet},
		{Asset: base.Asset, Side: "SELL", Price: base.Price, Size: base.Size, Timestamp: base.Timestamp, TransactionHash: base.TransactionHash, ProxyWallet: base.ProxyWallet},
		{Asset: base.Asset, Side: base.Side, Price: 0.1, Size: base.Size, Timestamp: base.Timestamp, TransactionHash: base.TransactionHash, ProxyWallet: base.ProxyWallet},
		{Asset: base.Asset, Side: base.Side, Price: base.Price, Size: 1, Timestamp: base.Timestamp, TransactionHash: base.TransactionHash, ProxyWallet: base.ProxyWallet},
		{Asset: base.Asset, Side: base.Side, Price: base.Price, Size: base.Size, Timestamp: 1, TransactionHash: base.TransactionHash, ProxyWallet: base.ProxyWallet},
		{Asset: base.Asset, Side: base.Side, Price: base.Price, Size: base.Size, Timestamp: base.Timestamp, TransactionHash: "0x999", ProxyWallet: base.ProxyWallet},
		{Asset: base.Asset, Side: base.Side, Price: base.Price, Size: base.Size, Timestamp: base.Timestamp, TransactionHash: base.TransactionHash, ProxyWallet: "0x999"},
	}
	for i, v := range variants {
		if ContentID(v) == baseID {
			t.Fatalf("variant %d produced the same id as base, expected a distinct hash", i)
		}
	}
}

func TestExecutedAt(t *testing.T) {
	trade := Trade{Timestamp: 1700000000}
	got := trade.ExecutedAt()
	if got.Unix() != 1700000000 {
		t.Fatalf("ExecutedAt().Unix() = %d, want 1700000000", got.Unix())
	}
	if got.Location().String() != "UTC" {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
}
