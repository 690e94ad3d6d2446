/**
 * @description
 * CLOB tradability audit candidate queries and closure writes (§4.1.5), plus
 * the pure-SQL expiration audit (§4.1.6).
 *
 * Grounded on the teacher's market_service.go query helpers (loadAllActiveMarkets,
 * GetActiveMarketsPaged), restructured around the specific candidate sets the
 * audit algorithm needs instead of a single "all active markets" query.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// AuditCandidate is a market eligible for a CLOB tradability probe.
type AuditCandidate struct {
	MarketID    string
	ConditionID string
	EventID     *string
}

// AuditTopN selects up to limit candidates that are active, not closed, and
// not archived, ordered by descending 24h volume (§4.1.5 pass 1).
func (s *Store) AuditTopN(ctx context.Context, limit int) ([]AuditCandidate, error) {
	var out []AuditCandidate
	err := s.db.WithContext(ctx).
		Table("markets").
		Select("id as market_id, condition_id, event_id").
		Where("active AND NOT closed AND NOT archived").
		Order("volume_24h DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// MixedEventCandidates selects open markets whose parent event already has
// both open and closed markets locally, to catch tail markets lingering as
// open inside an otherwise-resolved event (§4.1.5 pass 1b).
func (s *Store) MixedEventCandidates(ctx context.Context) ([]AuditCandidate, error) {
	var out []AuditCandidate
	err := s.db.WithContext(ctx).
		Table("markets m").
		Select("m.id as market_id, m.condition_id, m.event_id").
		Where(`m.active AND NOT m.closed AND NOT m.archived AND m.event_id IN (
			SELECT event_id FROM markets
			WHERE event_id IS NOT NULL
			GROUP BY event_id
			HAVING bool_or(closed) AND bool_or(NOT closed)
		)`).
		Scan(&out).Error
	return out, err
}

// OpenMarketsForEvents fetches every still-open market belonging to any of
// the given events, used by the propagation pass (§4.1.5 pass 2) after a
// closure is discovered in pass 1/1b.
func (s *Store) OpenMarketsForEvents(ctx context.Context, eventIDs []string) ([]AuditCandidate, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	var out []AuditCandidate
	err := s.db.WithContext(ctx).
		Table("markets").
		Select("id as market_id, condition_id, event_id").
		Where("active AND NOT closed AND NOT archived AND event_id IN (?)", eventIDs).
		Scan(&out).Error
	return out, err
}

// CloseMarketsAndImpactedEvents sets closed=true, active=false on every
// market in marketIDs, then closes every distinct parent event of those
// markets whose remaining linked markets are all non-live, in a single
// transaction (§4.1.5 step 5). It returns the ids of every distinct parent
// event of those markets, closed or not, for the caller's propagation pass.
func (s *Store) CloseMarketsAndImpactedEvents(ctx context.Context, marketIDs []string) ([]string, error) {
	if len(marketIDs) == 0 {
		return nil, nil
	}

	var impactedEventIDs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE markets SET closed = true, active = false, updated_at = now() WHERE id IN (?)`,
			marketIDs,
		).Error; err != nil {
			return fmt.Errorf("closing markets: %w", err)
		}

		if err := tx.Raw(
			`SELECT DISTINCT event_id FROM markets WHERE id IN (?) AND event_id IS NOT NULL`,
			marketIDs,
		).Scan(&impactedEventIDs).Error; err != nil {
			return fmt.Errorf("collecting impacted events: %w", err)
		}
		if len(impactedEventIDs) == 0 {
			return nil
		}

		if err := tx.Exec(
			`UPDATE events SET closed = true, active = false, updated_at = now()
			 WHERE id IN (?) AND NOT EXISTS (
				 SELECT 1 FROM markets m
				 WHERE m.event_id = events.id AND m.active AND NOT m.closed AND NOT m.archived
			 )`,
			impactedEventIDs,
		).Error; err != nil {
			return fmt.Errorf("closing impacted events: %w", err)
		}
		return nil
	})
	return impactedEventIDs, err
}

// ExpirationAudit runs the three pure-SQL expiration checks (§4.1.6). Only
// open rows are touched; resolved/closed history is never reshuffled.
func (s *Store) ExpirationAudit(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE markets SET active = false, updated_at = now()
			 WHERE active AND NOT closed AND end_date < now()`,
		).Error; err != nil {
			return fmt.Errorf("expiring markets: %w", err)
		}

		if err := tx.Exec(
			`UPDATE events SET active = false, updated_at = now()
			 WHERE active AND NOT closed AND end_date < now()`,
		).Error; err != nil {
			return fmt.Errorf("expiring events: %w", err)
		}

		if err := tx.Exec(
			`UPDATE events SET active = false, updated_at = now()
			 WHERE active AND NOT closed AND NOT EXISTS (
				 SELECT 1 FROM markets m
				 WHERE m.event_id = events.id AND m.active AND NOT m.closed AND NOT m.archived
			 )`,
		).Error; err != nil {
			return fmt.Errorf("expiring orphan events: %w", err)
		}
		return nil
	})
}
