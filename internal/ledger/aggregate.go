package ledger

import (
	"sort"
	"time"

	"caja/internal/core"
)

// Totals are the grouped sums over one filtered event set. ByMethod holds
// in minus out per payment method; the Cash* fields isolate Efectivo flows
// because only cash touches the physical drawer.
type Totals struct {
	TotalIn  core.Money
	TotalOut core.Money

	CashIn  core.Money
	CashOut core.Money

	// Split by source, as the balance formula needs them.
	CashSales     core.Money // in, Efectivo, from Sale and Service events
	CashManualIn  core.Money // in, Efectivo, from manual ledger events
	CashManualOut core.Money // out, Efectivo, from manual ledger events

	ByMethod map[string]core.Money
}

// FilterRange keeps events inside [from, to] at day granularity: an event
// at from 00:00 is included, one at to 23:59:59 is included, one a tick
// past to's midnight boundary is not. Membership compares calendar dates,
// so an event and a query parsed in different zones still land on the
// same day. Events with a zero timestamp are excluded from everything.
// A reversed range is a caller error.
func FilterRange(events []core.MonetaryEvent, from, to time.Time) ([]core.MonetaryEvent, error) {
	start := calendarDay(from)
	end := calendarDay(to)
	if end.Before(start) {
		return nil, core.ErrInvalidRange
	}

	filtered := make([]core.MonetaryEvent, 0, len(events))
	for _, e := range events {
		if e.Timestamp.IsZero() {
			continue
		}
		day := calendarDay(e.Timestamp)
		if !day.Before(start) && !day.After(end) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Aggregate computes the grouped sums over an already-filtered event set.
func Aggregate(events []core.MonetaryEvent) Totals {
	t := Totals{ByMethod: make(map[string]core.Money)}
	for _, e := range events {
		if e.Timestamp.IsZero() {
			continue
		}
		cash := e.PaymentMethod == core.MethodEfectivo
		switch e.Direction {
		case core.In:
			t.TotalIn = t.TotalIn.Add(e.Amount)
			t.ByMethod[e.PaymentMethod] = t.ByMethod[e.PaymentMethod].Add(e.Amount)
			if cash {
				t.CashIn = t.CashIn.Add(e.Amount)
				switch e.Source {
				case core.SourceSale, core.SourceService:
					t.CashSales = t.CashSales.Add(e.Amount)
				case core.SourceManual:
					t.CashManualIn = t.CashManualIn.Add(e.Amount)
				}
			}
		case core.Out:
			t.TotalOut = t.TotalOut.Add(e.Amount)
			t.ByMethod[e.PaymentMethod] = t.ByMethod[e.PaymentMethod].Sub(e.Amount)
			if cash {
				t.CashOut = t.CashOut.Add(e.Amount)
				if e.Source == core.SourceManual {
					t.CashManualOut = t.CashManualOut.Add(e.Amount)
				}
			}
		}
	}
	return t
}

// SortForDisplay returns a copy ordered newest first. The sort is stable:
// events sharing a timestamp keep their insertion order.
func SortForDisplay(events []core.MonetaryEvent) []core.MonetaryEvent {
	sorted := make([]core.MonetaryEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}
