/**
 * @description
 * A single WebSocket connection within the sharded pool. Adapted from the
 * teacher's single-connection rtds.Client: same dial/read-loop/ping-loop/
 * reconnect-with-backoff shape, generalized to be one of N shards instead of
 * the only connection, and driven by the subscription protocol in §4.2.3
 * instead of the teacher's single "send everything as one batch" Subscribe.
 *
 * @dependencies
 * - github.com/gorilla/websocket
 */

package rtds

import (
	"context"
	"sync"
	"time"

	"github.com/bankai-project/indexer/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxTokensPerFrame = 500
	framePacing       = 25 * time.Millisecond
)

// ShardConfig bounds reconnect behavior (§4.2.6).
type ShardConfig struct {
	URL               string
	BaseBackoff       time.Duration // default 3s, per ws_reconnect_interval_ms
	MaxBackoff        time.Duration // 30s
	MaxAttempts       int           // default 10; after this, constant 60s backoff
	PostMaxBackoff    time.Duration // 60s
}

type subscriptionFrame struct {
	Type      string   `json:"type"`
	Operation string   `json:"operation,omitempty"`
	AssetIDs  []string `json:"assets_ids"`
}

// Shard owns one WS connection and its slice of the token universe.
type Shard struct {
	id  int
	cfg ShardConfig

	onUpdate       func(int, []PriceUpdate)
	onStatusChange func(int, bool)

	mu   sync.Mutex
	conn *websocket.Conn

	assignMu      sync.Mutex
	assignedTokens map[string]struct{}
	subscribed     map[string]struct{}

	reconnectAttempts int
	done              chan struct{}
}

func NewShard(id int, cfg ShardConfig, onUpdate func(int, []PriceUpdate), onStatusChange func(int, bool)) *Shard {
	return &Shard{
		id:             id,
		cfg:            cfg,
		onUpdate:       onUpdate,
		onStatusChange: onStatusChange,
		assignedTokens: make(map[string]struct{}),
		subscribed:     make(map[string]struct{}),
		done:           make(chan struct{}),
	}
}

// AssignTokens replaces this shard's assigned token set. Returns the newly
// added tokens (for a resubscribe pass); removed tokens are not reported.
func (s *Shard) AssignTokens(tokens []string) (added []string) {
	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	next := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		next[t] = struct{}{}
		if _, ok := s.assignedTokens[t]; !ok {
			added = append(added, t)
		}
	}
	s.assignedTokens = next
	return added
}

// Start dials and begins the read/ping loops, reconnecting indefinitely on
// failure until Stop() is called (§4.2.6: never give up permanently).
func (s *Shard) Start(ctx context.Context) {
	go s.connectLoop(ctx)
}

func (s *Shard) connectLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
		if err != nil {
			s.sleepBackoff(ctx)
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.reconnectAttempts = 0
		s.setConnected(true)

		// §4.2.6: on successful open, clear subscribed_tokens and resend the
		// full subscription protocol.
		s.assignMu.Lock()
		s.subscribed = make(map[string]struct{})
		tokens := make([]string, 0, len(s.assignedTokens))
		for t := range s.assignedTokens {
			tokens = append(tokens, t)
		}
		s.assignMu.Unlock()

		if err := s.sendInitialSubscription(tokens); err != nil {
			logger.Error("rtds shard %d: initial subscription failed: %v", s.id, err)
		}

		go s.pingLoop(ctx, conn)
		s.readLoop(ctx, conn)

		s.setConnected(false)

		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}
		s.sleepBackoff(ctx)
	}
}

func (s *Shard) sleepBackoff(ctx context.Context) {
	s.reconnectAttempts++
	var wait time.Duration
	if s.reconnectAttempts <= s.cfg.MaxAttempts {
		base := s.cfg.BaseBackoff
		if base <= 0 {
			base = 3 * time.Second
		}
		wait = base << (s.reconnectAttempts - 1)
		if wait > s.cfg.MaxBackoff {
			wait = s.cfg.MaxBackoff
		}
	} else {
		wait = s.cfg.PostMaxBackoff
		if wait <= 0 {
			wait = 60 * time.Second
		}
	}

	select {
	case <-ctx.Done():
	case <-s.done:
	case <-time.After(wait):
	}
}

// sendInitialSubscription implements §4.2.3: one initial frame for the first
// batch, then "subscribe" frames for the rest, paced to avoid bursts.
func (s *Shard) sendInitialSubscription(tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	first := true
	for start := 0; start < len(tokens); start += maxTokensPerFrame {
		end := start + maxTokensPerFrame
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		frame := subscriptionFrame{Type: "market", AssetIDs: batch}
		if !first {
			frame.Operation = "subscribe"
		}
		first = false

		if err := s.writeJSON(frame); err != nil {
			return err
		}
		s.markSubscribed(batch)
		time.Sleep(framePacing)
	}
	return nil
}

// Resubscribe sends "subscribe" frames (no initial frame) for newly added
// tokens, per §4.2.7 step 3.
func (s *Shard) Resubscribe(tokens []string) error {
	s.assignMu.Lock()
	toSend := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := s.subscribed[t]; !ok {
			toSend = append(toSend, t)
		}
	}
	s.assignMu.Unlock()

	if len(toSend) == 0 {
		return nil
	}

	for start := 0; start < len(toSend); start += maxTokensPerFrame {
		end := start + maxTokensPerFrame
		if end > len(toSend) {
			end = len(toSend)
		}
		batch := toSend[start:end]
		frame := subscriptionFrame{Type: "market", Operation: "subscribe", AssetIDs: batch}
		if err := s.writeJSON(frame); err != nil {
			return err
		}
		s.markSubscribed(batch)
		time.Sleep(framePacing)
	}
	return nil
}

func (s *Shard) markSubscribed(tokens []string) {
	s.assignMu.Lock()
	defer s.assignMu.Unlock()
	for _, t := range tokens {
		s.subscribed[t] = struct{}{}
	}
}

func (s *Shard) writeJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

func (s *Shard) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		conn.Close()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
	}()

	conn.SetReadLimit(10 * 1024 * 1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		updates, err := ParseFrame(message)
		if err != nil {
			logger.Error("rtds shard %d: parse error: %v", s.id, err)
			continue
		}
		if len(updates) > 0 && s.onUpdate != nil {
			s.onUpdate(s.id, updates)
		}
	}
}

func (s *Shard) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.conn != conn {
				s.mu.Unlock()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *Shard) setConnected(connected bool) {
	if s.onStatusChange != nil {
		s.onStatusChange(s.id, connected)
	}
}

// Stop closes the connection and prevents further reconnection attempts.
func (s *Shard) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}
