/**
 * @description
 * The sharded WebSocket connection pool (§4.2.2): a fixed set of N Shards,
 * token->shard assignment by stable hash, and an aggregate connected status.
 * This is the transport-only half of the Realtime Sync Manager; the buffer/
 * flush logic that owns Store writes lives in internal/realtime, which
 * consumes this Pool's update callback.
 *
 * @dependencies
 * - context, sync, time
 */

package rtds

import (
	"context"
	"sync"
	"time"
)

type PoolConfig struct {
	URL             string
	Shards          int
	ReconnectBase   time.Duration
	ReconnectMax    time.Duration
	MaxAttempts     int
	PostMaxBackoff  time.Duration
}

// Pool owns N shards and the token->shard assignment.
type Pool struct {
	cfg    PoolConfig
	shards []*Shard

	onUpdate func(tokenID string, price float64)

	statusMu    sync.Mutex
	connected   map[int]bool
	onAggregate func(anyConnected bool)
}

func NewPool(cfg PoolConfig, onUpdate func(tokenID string, price float64), onAggregate func(bool)) *Pool {
	if cfg.Shards < 1 {
		cfg.Shards = 1
	}
	p := &Pool{
		cfg:         cfg,
		onUpdate:    onUpdate,
		connected:   make(map[int]bool, cfg.Shards),
		onAggregate: onAggregate,
	}

	shardCfg := ShardConfig{
		URL:            cfg.URL,
		BaseBackoff:    cfg.ReconnectBase,
		MaxBackoff:     cfg.ReconnectMax,
		MaxAttempts:    cfg.MaxAttempts,
		PostMaxBackoff: cfg.PostMaxBackoff,
	}

	p.shards = make([]*Shard, cfg.Shards)
	for i := 0; i < cfg.Shards; i++ {
		p.shards[i] = NewShard(i, shardCfg, p.handleShardUpdate, p.handleShardStatus)
	}
	return p
}

func (p *Pool) handleShardUpdate(shardID int, updates []PriceUpdate) {
	if p.onUpdate == nil {
		return
	}
	for _, u := range updates {
		p.onUpdate(u.TokenID, u.Price)
	}
}

func (p *Pool) handleShardStatus(shardID int, connected bool) {
	p.statusMu.Lock()
	p.connected[shardID] = connected
	any := false
	for _, c := range p.connected {
		if c {
			any = true
			break
		}
	}
	p.statusMu.Unlock()

	if p.onAggregate != nil {
		p.onAggregate(any)
	}
}

// Start dials every shard.
func (p *Pool) Start(ctx context.Context) {
	for _, s := range p.shards {
		s.Start(ctx)
	}
}

// Stop closes every shard and halts reconnection.
func (p *Pool) Stop() {
	for _, s := range p.shards {
		s.Stop()
	}
}

// AnyConnected reports the aggregate status used for sync_state (§4.2.8).
func (p *Pool) AnyConnected() bool {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	for _, c := range p.connected {
		if c {
			return true
		}
	}
	return false
}

// Reshard recomputes the token->shard assignment for the given universe and
// sends "subscribe" frames for newly-assigned tokens on already-connected
// shards, per §4.2.7.
func (p *Pool) Reshard(tokens []string) {
	byShard := make([][]string, len(p.shards))
	for _, t := range tokens {
		idx := ShardFor(t, len(p.shards))
		byShard[idx] = append(byShard[idx], t)
	}

	for i, shard := range p.shards {
		shard.AssignTokens(byShard[i])
		go func(s *Shard, toks []string) {
			_ = s.Resubscribe(toks)
		}(shard, byShard[i])
	}
}
