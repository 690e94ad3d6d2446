package pricehistory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetHistoryDecodesPointsAndSendsQuery(t *testing.T) {
	var gotMarket, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMarket = r.URL.Query().Get("market")
		gotInterval = r.URL.Query().Get("interval")
		w.Write([]byte(`{"history":[{"t":1000,"p":0.7},{"t":2000,"p":0.6}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	points, err := c.GetHistory(context.Background(), "t_yes", Interval1D)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if gotMarket != "t_yes" {
		t.Fatalf("unexpected market param: %q", gotMarket)
	}
	if gotInterval != "1d" {
		t.Fatalf("unexpected interval param: %q", gotInterval)
	}
	if len(points) != 2 || points[0].T != 1000 || points[0].P != 0.7 {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestGetHistoryEmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"history":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	points, err := c.GetHistory(context.Background(), "t_yes", IntervalMax)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected empty slice, got %v", points)
	}
}

func TestGetHistoryPropagatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	if _, err := c.GetHistory(context.Background(), "t_yes", IntervalMax); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}
