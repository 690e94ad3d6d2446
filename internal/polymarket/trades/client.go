/**
 * @description
 * Global trades feed client. Adapted from the teacher's Data API client
 * (internal/polymarket/data_api), which only ever queries /trades scoped to
 * a single address; this fetches the unscoped global feed the trade
 * ingestion task (§4.1.7) filters client-side against the tracked token set.
 *
 * @dependencies
 * - net/url, strconv
 * - github.com/bankai-project/indexer/internal/httpkit
 */

package trades

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/bankai-project/indexer/internal/httpkit"
)

// Trade is one row of the global trades feed, field-subset matching the
// teacher's data_api.Trade shape but renamed to the spec's §4.1.7 vocabulary
// (asset/side/price/size/timestamp/transactionHash/proxyWallet).
type Trade struct {
	Asset           string    `json:"asset"`
	Side            string    `json:"side"`
	Price           float64   `json:"price"`
	Size            float64   `json:"size"`
	Timestamp       int64     `json:"timestamp"`
	TransactionHash string    `json:"transactionHash"`
	ProxyWallet     string    `json:"proxyWallet"`
}

func (t Trade) ExecutedAt() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

type Client struct {
	http *httpkit.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpkit.New(baseURL, nil, timeout)}
}

// GetFeed fetches one batch of the global trades feed, most recent first.
func (c *Client) GetFeed(ctx context.Context, limit, offset int) ([]Trade, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var trades []Trade
	if err := c.http.Do(ctx, "GET", "/trades", q, nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}
