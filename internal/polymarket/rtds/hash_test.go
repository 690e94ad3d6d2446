package rtds

import "testing"

func TestShardForIsStable(t *testing.T) {
	first := ShardFor("0xabc123", 8)
	for i := 0; i < 100; i++ {
		if got := ShardFor("0xabc123", 8); got != first {
			t.Fatalf("ShardFor not stable across calls: got %d, want %d", got, first)
		}
	}
}

func TestShardForWithinBounds(t *testing.T) {
	tokens := []string{"a", "b", "c", "0x1", "0x2", "very-long-token-id-aaaaaaaaaaaaaaaaaaaa"}
	for _, tok := range tokens {
		got := ShardFor(tok, 4)
		if got < 0 || got >= 4 {
			t.Fatalf("ShardFor(%q, 4) = %d, out of [0,4)", tok, got)
		}
	}
}

func TestShardForSingleShard(t *testing.T) {
	if got := ShardFor("anything", 1); got != 0 {
		t.Fatalf("ShardFor with n=1 = %d, want 0", got)
	}
	if got := ShardFor("anything", 0); got != 0 {
		t.Fatalf("ShardFor with n=0 = %d, want 0", got)
	}
}

func TestShardForDistributesAcrossShards(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		tok := string(rune('a' + i%26))
		for j := 0; j < 5; j++ {
			tok += string(rune('0' + j))
		}
		seen[ShardFor(tok, 8)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected tokens to spread across more than one shard, got %v", seen)
	}
}
