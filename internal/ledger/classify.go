package ledger

import "caja/internal/core"

// Merge is the single source of truth for the double-counting rule.
//
// A ledger entry the system generated from a Sale, Service or Purchase
// mirrors money that already appears in that record's own payment
// breakdown. Whenever the merged view includes payment-derived events,
// those mirrored entries are excluded; only genuinely free-standing
// manual entries (no RelatedType, or RelatedType "Manual") survive the
// merge. Every peso is counted exactly once.
func Merge(events []core.MonetaryEvent) []core.MonetaryEvent {
	merged := make([]core.MonetaryEvent, 0, len(events))
	for _, e := range events {
		if e.Source == core.SourceManual && e.SystemAttributed() {
			continue
		}
		merged = append(merged, e)
	}
	return merged
}

// ManualOnly returns the genuinely manual entries, the sub-list printed on
// the corte ticket.
func ManualOnly(events []core.MonetaryEvent) []core.MonetaryEvent {
	var manual []core.MonetaryEvent
	for _, e := range events {
		if e.Source == core.SourceManual && !e.SystemAttributed() {
			manual = append(manual, e)
		}
	}
	return manual
}
