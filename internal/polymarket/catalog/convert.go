/**
 * @description
 * Converts wire-shaped catalog.Event / catalog.Market into the store's
 * models.Event / models.Market rows. This only builds the "incoming" half of
 * a row — merge-rule application (overwrite vs OR vs recompute) happens in
 * internal/store, since it needs the existing row too.
 */

package catalog

import "github.com/bankai-project/indexer/internal/models"

// ToModel converts an Event page item into the incoming half of a models.Event row.
func (e Event) ToModel() models.Event {
	return models.Event{
		ID:            e.ID,
		Title:         e.Title,
		Slug:          e.Slug,
		Description:   e.Description,
		ImageURL:      e.Image,
		IconURL:       e.Icon,
		StartDate:     parseTimePtr(e.StartDate),
		EndDate:       parseTimePtr(e.EndDate),
		VolumeAllTime: e.Volume.Float(),
		Volume24h:     e.Volume24hr.Float(),
		Liquidity:     e.Liquidity.Float(),
		Active:        e.Active,
		Closed:        e.Closed,
		Archived:      e.Archived,
		Tags:          tagSlugs(e.Tags),
	}
}

func tagSlugs(tags []Tag) models.StringArray {
	if len(tags) == 0 {
		return nil
	}
	out := make(models.StringArray, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Slug)
	}
	return out
}

// ToModel converts a Market page item (or a nested child market) into the
// incoming half of a models.Market row. EventID is intentionally left unset
// here: per §4.1.3, the market upsert path never writes event_id; only the
// event->market linkage pass (§4.1.4) does.
func (m Market) ToModel() models.Market {
	outcomes := DecodeOutcomes(m.Outcomes)
	prices := DecodeFloatArray(m.OutcomePrices)
	tokenIDs := DecodeStringArray(m.ClobTokenIds)

	return models.Market{
		ID:              m.ID,
		ConditionID:     m.ConditionID,
		Question:        m.Question,
		Description:     m.Description,
		Slug:            m.Slug,
		Category:        m.Category,
		Outcomes:        models.StringArray(outcomes),
		OutcomeTokenIDs: models.StringArray(tokenIDs),
		OutcomePrices:   models.FloatArray(prices),
		BestBid:         m.BestBid.Float(),
		BestAsk:         m.BestAsk.Float(),
		Spread:          m.Spread.Float(),
		VolumeAllTime:   m.Volume.Float(),
		Volume24h:       m.Volume24hr.Float(),
		Liquidity:       m.Liquidity.Float(),
		EndDate:         parseTimePtr(m.EndDate),
		Active:          m.Active,
		Closed:          m.Closed,
		Archived:        m.Archived,
	}
}

// LinkPair is a (market_id, event_id) pair collected while walking an event
// page's nested markets array, consumed by the store's chunked linkage update.
type LinkPair struct {
	MarketID string
	EventID  string
}

// CollectLinks extracts (market_id, event_id) pairs from a page of events,
// and counts events whose nested markets array was absent (logged, not
// treated as an error, per §4.1.4 step 3).
func CollectLinks(events []Event) (pairs []LinkPair, missingCount int) {
	for _, e := range events {
		if e.Markets == nil {
			missingCount++
			continue
		}
		for _, m := range e.Markets {
			if m.ID == "" {
				continue
			}
			pairs = append(pairs, LinkPair{MarketID: m.ID, EventID: e.ID})
		}
	}
	return pairs, missingCount
}
