/**
 * @description
 * Read-only CLOB adapter: the per-market "is-tradable" lookup (§2 item 2)
 * used by the CLOB tradability audit. Adapted from the teacher's CLOB
 * client — keeps its HMAC signing approach (now delegated to
 * internal/httpkit) but drops order placement/cancellation/book depth,
 * which this repo never performs or exposes (out of scope, see DESIGN.md).
 * Price history is its own component (internal/polymarket/pricehistory).
 *
 * @dependencies
 * - github.com/bankai-project/indexer/internal/httpkit
 */

package clob

import (
	"context"
	"time"

	"github.com/bankai-project/indexer/internal/httpkit"
)

type Client struct {
	http *httpkit.Client
}

func NewClient(baseURL string, creds *httpkit.Credentials, timeout time.Duration) *Client {
	return &Client{http: httpkit.New(baseURL, creds, timeout)}
}

// MarketState is the subset of the CLOB's /markets/{condition_id} response
// the tradability audit needs.
type MarketState struct {
	ConditionID     string `json:"condition_id"`
	Closed          bool   `json:"closed"`
	AcceptingOrders bool   `json:"accepting_orders"`
	EnableOrderBook bool   `json:"enable_order_book"`
}

// IsLive reports whether the CLOB still considers this market tradable.
// Closed if any of the three flags says so (§4.1.5 step 3).
func (s MarketState) IsLive() bool {
	return !s.Closed && s.AcceptingOrders && s.EnableOrderBook
}

// GetMarketState probes the CLOB's authoritative state for a single condition.
func (c *Client) GetMarketState(ctx context.Context, conditionID string) (*MarketState, error) {
	var state MarketState
	path := "/markets/" + conditionID
	if err := c.http.Do(ctx, "GET", path, nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
