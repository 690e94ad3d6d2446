package trades

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetFeedSendsLimitAndOffset(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"asset":"t_yes","side":"BUY","price":0.5,"size":10,"timestamp":1700000000,"transactionHash":"0xa","proxyWallet":"0xb"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	trades, err := c.GetFeed(context.Background(), 50, 100)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if gotQuery != "limit=50&offset=100" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
	if len(trades) != 1 || trades[0].Asset != "t_yes" {
		t.Fatalf("unexpected trades: %+v", trades)
	}
}

func TestGetFeedOmitsZeroOffset(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	if _, err := c.GetFeed(context.Background(), 20, 0); err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if gotQuery != "limit=20" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
}
