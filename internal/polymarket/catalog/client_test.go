package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestPageParamsToQuery(t *testing.T) {
	cases := []struct {
		name string
		p    PageParams
		want string
	}{
		{"defaults", PageParams{Offset: 0}, "offset=0"},
		{"limit and offset", PageParams{Limit: 50, Offset: 100}, "limit=50&offset=100"},
		{"closed true", PageParams{Offset: 0, Closed: boolPtr(true)}, "closed=true&offset=0"},
		{"closed false", PageParams{Offset: 0, Closed: boolPtr(false)}, "closed=false&offset=0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.p.toQuery().Encode(); got != c.want {
				t.Fatalf("toQuery() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestGetEventsAndGetMarkets(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/events":
			w.Write([]byte(`[{"id":"evt-1","title":"x"}]`))
		case "/markets":
			w.Write([]byte(`[{"id":"mkt-1","conditionId":"cond-1"}]`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	events, err := c.GetEvents(context.Background(), PageParams{Limit: 10})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if gotPath != "/events" || len(events) != 1 || events[0].ID != "evt-1" {
		t.Fatalf("unexpected events response: path=%q events=%+v", gotPath, events)
	}

	markets, err := c.GetMarkets(context.Background(), PageParams{Limit: 10})
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
	if gotPath != "/markets" || len(markets) != 1 || markets[0].ConditionID != "cond-1" {
		t.Fatalf("unexpected markets response: path=%q markets=%+v", gotPath, markets)
	}
}
