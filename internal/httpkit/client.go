/**
 * @description
 * Generic JSON request/response helper shared by the catalog, CLOB, trades,
 * and price-history clients. Generalizes the teacher's CLOB
 * `sendRequestDecode` (status-code branching, HTML-WAF detection,
 * best-effort error-body decoding) into a single reusable path so each client
 * package only needs to describe its base URL, optional signer, and payload
 * shapes.
 *
 * @dependencies
 * - net/http, encoding/json
 */

package httpkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is used whenever a caller passes a zero timeout to New.
const DefaultTimeout = 30 * time.Second

// Client is a thin wrapper around *http.Client with an optional signer.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Creds      *Credentials // nil disables request signing
}

// New builds a Client with the given request timeout. A zero timeout falls
// back to DefaultTimeout (configurable per §4.3, default 30s).
func New(baseURL string, creds *Credentials, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Creds:      creds,
	}
}

// Do performs method+path against BaseURL, marshalling payload (if non-nil)
// as the JSON body and unmarshalling the response into result (if non-nil).
// query is URL-encoded (keys sorted) and appended to path after a '?'.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload interface{}, result interface{}) error {
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return &ValidationError{Issues: []string{fmt.Sprintf("marshal payload: %v", err)}}
		}
	}

	fullPath := path
	if len(query) > 0 {
		fullPath = path + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+fullPath, bytes.NewReader(body))
	if err != nil {
		return &ValidationError{Issues: []string{fmt.Sprintf("build request: %v", err)}}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.Creds != nil {
		ApplyHeaders(req, *c.Creds, body, time.Now())
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		isTimeout := false
		if netErr, ok := err.(interface{ Timeout() bool }); ok {
			isTimeout = netErr.Timeout()
		}
		return &NetworkError{IsTimeout: isTimeout, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Cause: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if resp.StatusCode >= 400 {
		if looksLikeHTML(respBody) {
			return &APIError{Status: resp.StatusCode, Body: "upstream returned an HTML error page"}
		}
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &ValidationError{Issues: []string{fmt.Sprintf("decode response: %v", err)}}
		}
	}

	return nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := time.ParseDuration(header + "s"); err == nil {
		return secs
	}
	return 0
}
