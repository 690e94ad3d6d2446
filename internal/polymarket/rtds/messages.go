/**
 * @description
 * Inbound message parsing for the realtime "market" channel. Adapted from the
 * teacher's handlers.go: same event-type peeking and price_change schema, but
 * stripped of the teacher's direct Redis/gorm side effects — parsing here is
 * pure, and the caller (the Realtime Sync Manager) decides what to do with a
 * parsed price update (§4.2.4).
 *
 * @dependencies
 * - encoding/json
 */

package rtds

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// PriceUpdate is a single parsed (token_id, price) observed in a price_change frame.
type PriceUpdate struct {
	TokenID string
	Price   float64
}

type baseMessage struct {
	EventType string `json:"event_type"`
}

type priceChange struct {
	AssetID string `json:"asset_id"`
	Price   string `json:"price"`
}

type priceChangeMessage struct {
	EventType    string        `json:"event_type"`
	PriceChanges []priceChange `json:"price_changes"`
}

// ParseFrame interprets one inbound WS frame per §4.2.4:
//   - plaintext status tokens and non-JSON frames are ignored (nil, nil)
//   - a JSON array (orderbook snapshot) is ignored (nil, nil)
//   - a JSON object with event_type "price_change" yields its PriceUpdates
//   - any other shape is ignored (nil, nil)
func ParseFrame(raw []byte) ([]PriceUpdate, error) {
	msg := bytes.TrimSpace(raw)
	if len(msg) == 0 {
		return nil, nil
	}

	switch msg[0] {
	case '{':
		// continue below
	case '[':
		return nil, nil
	default:
		// plaintext status/error token, e.g. "INVALID OPERATION", "PONG"
		_ = strings.ToUpper(string(msg))
		return nil, nil
	}

	var base baseMessage
	if err := json.Unmarshal(msg, &base); err != nil {
		return nil, nil
	}

	if base.EventType != "price_change" {
		return nil, nil
	}

	var m priceChangeMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, nil
	}

	updates := make([]PriceUpdate, 0, len(m.PriceChanges))
	for _, c := range m.PriceChanges {
		if c.AssetID == "" {
			continue
		}
		price, err := strconv.ParseFloat(c.Price, 64)
		if err != nil {
			continue
		}
		updates = append(updates, PriceUpdate{TokenID: c.AssetID, Price: price})
	}
	return updates, nil
}
