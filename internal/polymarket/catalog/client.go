/**
 * @description
 * Paginated REST client over the metadata catalog (events, markets).
 * Adapted from the teacher's Gamma client: same base-URL/query-param shape,
 * rebuilt on internal/httpkit so every catalog call gets the shared error
 * classifier instead of ad-hoc status-code checks.
 *
 * @dependencies
 * - net/url, strconv
 * - github.com/bankai-project/indexer/internal/httpkit
 */

package catalog

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/bankai-project/indexer/internal/httpkit"
)

type Client struct {
	http *httpkit.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpkit.New(baseURL, nil, timeout)}
}

// PageParams describes one offset-paginated request.
type PageParams struct {
	Limit  int
	Offset int
	Closed *bool
}

func (p PageParams) toQuery() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	q.Set("offset", strconv.Itoa(p.Offset))
	if p.Closed != nil {
		q.Set("closed", strconv.FormatBool(*p.Closed))
	}
	return q
}

// GetEvents fetches one page of events.
func (c *Client) GetEvents(ctx context.Context, p PageParams) ([]Event, error) {
	var events []Event
	if err := c.http.Do(ctx, "GET", "/events", p.toQuery(), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetMarkets fetches one page of standalone markets.
func (c *Client) GetMarkets(ctx context.Context, p PageParams) ([]Market, error) {
	var markets []Market
	if err := c.http.Do(ctx, "GET", "/markets", p.toQuery(), nil, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}
