/**
 * @description
 * Per-condition price-history client used by the Backfill Manager. Factored
 * out of the CLOB client as its own module per spec.md §2 item 4 (a distinct
 * component, even though it shares the CLOB's base URL and auth-free GET
 * surface) — grounded on the same httpkit.Client wiring as
 * internal/polymarket/clob.
 *
 * @dependencies
 * - net/url
 * - github.com/bankai-project/indexer/internal/httpkit
 */

package pricehistory

import (
	"context"
	"net/url"
	"time"

	"github.com/bankai-project/indexer/internal/httpkit"
)

// Interval is one of the discrete windows the upstream history endpoint serves.
type Interval string

const (
	IntervalMax Interval = "max"
	Interval1W  Interval = "1w"
	Interval1D  Interval = "1d"
	Interval6H  Interval = "6h"
	Interval1H  Interval = "1h"
)

// Point is one (instant, price) observation.
type Point struct {
	T float64 `json:"t"`
	P float64 `json:"p"`
}

type Client struct {
	http *httpkit.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpkit.New(baseURL, nil, timeout)}
}

// GetHistory fetches the series for a single token over interval.
func (c *Client) GetHistory(ctx context.Context, tokenID string, interval Interval) ([]Point, error) {
	q := url.Values{}
	q.Set("market", tokenID)
	q.Set("interval", string(interval))

	var resp struct {
		History []Point `json:"history"`
	}
	if err := c.http.Do(ctx, "GET", "/prices-history", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}
