/**
 * @description
 * Type definitions for the metadata catalog's event/market responses.
 * Adapted from the teacher's Gamma client types: same tolerant-decode shapes
 * (outcomes/prices/token ids as JSON-encoded strings, volume/liquidity as
 * either number or string), retargeted at the spec's Event/Market model
 * instead of the teacher's wider (order-trading oriented) Market struct.
 */

package catalog

import (
	"encoding/json"
	"strconv"
	"time"
)

// Event is a single page item from the events endpoint.
type Event struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Icon        string   `json:"icon"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Active      bool     `json:"active"`
	Closed      bool     `json:"closed"`
	Archived    bool     `json:"archived"`
	Volume      anyNum   `json:"volume"`
	Volume24hr  anyNum   `json:"volume24hr"`
	Liquidity   anyNum   `json:"liquidity"`
	Tags        []Tag    `json:"tags"`
	// Markets is the optional nested array of child markets used for
	// event->market linkage (§4.1.4). Absence is a valid, warn-only case.
	Markets []Market `json:"markets"`
}

// Tag is a label on an Event.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// Market is a single page item from the markets endpoint, and also the shape
// of a nested child market inside an Event page.
type Market struct {
	ID              string `json:"id"`
	ConditionID     string `json:"conditionId"`
	EventID         string `json:"eventId"`
	Slug            string `json:"slug"`
	Question        string `json:"question"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	EndDate         string `json:"endDate"`
	Active          bool   `json:"active"`
	Closed          bool   `json:"closed"`
	Archived        bool   `json:"archived"`

	// Outcomes/OutcomePrices/ClobTokenIds are JSON-encoded arrays on the wire.
	Outcomes      string `json:"outcomes"`
	OutcomePrices string `json:"outcomePrices"`
	ClobTokenIds  string `json:"clobTokenIds"`

	Volume     anyNum `json:"volume"`
	Volume24hr anyNum `json:"volume24hr"`
	Liquidity  anyNum `json:"liquidity"`
	BestBid    anyNum `json:"bestBid"`
	BestAsk    anyNum `json:"bestAsk"`
	Spread     anyNum `json:"spread"`
}

// anyNum tolerates upstream sending a number as either a JSON number or a
// quoted string, mirroring the teacher's interface{}-typed volume fields.
type anyNum float64

func (n *anyNum) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*n = 0
	case float64:
		*n = anyNum(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		*n = anyNum(f)
	default:
		*n = 0
	}
	return nil
}

func (n anyNum) Float() float64 { return float64(n) }

// defaultOutcomes is substituted when the outcomes field can't be parsed.
var defaultOutcomes = []string{"Yes", "No"}

// DecodeOutcomes parses the JSON-encoded outcomes array, tolerating malformed
// values by falling back to the binary-market default.
func DecodeOutcomes(raw string) []string {
	if raw == "" {
		return append([]string(nil), defaultOutcomes...)
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) == 0 {
		return append([]string(nil), defaultOutcomes...)
	}
	return out
}

// DecodeFloatArray parses a JSON-encoded []float64, tolerating string-encoded
// elements and falling back to an empty slice on failure.
func DecodeFloatArray(raw string) []float64 {
	if raw == "" {
		return nil
	}
	var out []float64
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out
	}
	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err == nil {
		vals := make([]float64, 0, len(strs))
		for _, s := range strs {
			f, _ := strconv.ParseFloat(s, 64)
			vals = append(vals, f)
		}
		return vals
	}
	return nil
}

// DecodeStringArray parses a JSON-encoded []string (used for clobTokenIds),
// falling back to nil on failure.
func DecodeStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func parseTimePtr(value string) *time.Time {
	if value == "" {
		return nil
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z07:00", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
