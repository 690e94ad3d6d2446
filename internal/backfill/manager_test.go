package backfill

import (
	"math"
	"testing"

	"github.com/bankai-project/indexer/internal/models"
	"github.com/bankai-project/indexer/internal/polymarket/pricehistory"
)

func TestBuildSamplesBinaryMarket(t *testing.T) {
	tokens := models.StringArray{"t_yes", "t_no"}
	points := []pricehistory.Point{{T: 1000, P: 0.7}, {T: 2000, P: 0.6}}

	got := buildSamples("m1", tokens, points)
	if len(got) != 4 {
		t.Fatalf("expected 4 samples for a binary market, got %d", len(got))
	}

	want := []struct {
		token string
		price float64
	}{
		{"t_yes", 0.7}, {"t_no", 0.3},
		{"t_yes", 0.6}, {"t_no", 0.4},
	}
	for i, w := range want {
		if got[i].TokenID != w.token || math.Abs(got[i].Price-w.price) > 1e-9 || got[i].Source != "clob" {
			t.Fatalf("sample %d = %+v, want token=%s price=%v", i, got[i], w.token, w.price)
		}
	}
}

func TestBuildSamplesSingleToken(t *testing.T) {
	tokens := models.StringArray{"t_only"}
	points := []pricehistory.Point{{T: 1000, P: 0.5}}

	got := buildSamples("m2", tokens, points)
	if len(got) != 1 {
		t.Fatalf("expected 1 sample for a single-token market, got %d", len(got))
	}
	if got[0].TokenID != "t_only" || got[0].Price != 0.5 {
		t.Fatalf("unexpected sample: %+v", got[0])
	}
}

func TestBuildSamplesMultiOutcomeRecordsPrimaryOnly(t *testing.T) {
	tokens := models.StringArray{"t_a", "t_b", "t_c"}
	points := []pricehistory.Point{{T: 1000, P: 0.2}, {T: 2000, P: 0.3}}

	got := buildSamples("m3", tokens, points)
	if len(got) != 2 {
		t.Fatalf("expected one sample per point for an N>2 market, got %d", len(got))
	}
	for _, s := range got {
		if s.TokenID != "t_a" {
			t.Fatalf("expected every sample to use the primary token, got %s", s.TokenID)
		}
	}
}
