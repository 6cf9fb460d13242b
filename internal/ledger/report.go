package ledger

import (
	"time"

	"caja/internal/core"
)

// ReconciliationReport is the printable corte de caja: everything the
// drawer count is verified against, built fresh on every request and
// never persisted by this package.
type ReconciliationReport struct {
	RangeStart time.Time
	RangeEnd   time.Time

	InitialBalance core.Money
	InitialSetBy   string

	CashIn               core.Money
	CashOut              core.Money
	ExpectedFinalBalance core.Money

	TotalIn  core.Money
	TotalOut core.Money

	ByPaymentMethod map[string]core.Money

	// LineItems is the full merged event list for the range, newest first.
	LineItems []core.MonetaryEvent

	// ManualEntries lists only the free-standing drawer movements, the
	// sub-list printed on the ticket. Newest first.
	ManualEntries []core.MonetaryEvent

	Warnings []Warning
}

// BuildReport runs the full pipeline for an explicit range: normalize,
// merge out mirrored ledger entries, filter, aggregate, apply the balance
// formula. Zero activity yields a valid all-zero report.
func BuildReport(snap Snapshot, from, to time.Time) (*ReconciliationReport, error) {
	norm, err := Normalize(snap)
	if err != nil {
		return nil, err
	}

	merged := Merge(norm.Events)
	inRange, err := FilterRange(merged, from, to)
	if err != nil {
		return nil, err
	}

	totals := Aggregate(inRange)
	initial, setBy := InitialBalanceFor(snap.Balances, from, to)

	return &ReconciliationReport{
		RangeStart:           dayStart(from),
		RangeEnd:             dayStart(to),
		InitialBalance:       initial,
		InitialSetBy:         setBy,
		CashIn:               totals.CashIn,
		CashOut:              totals.CashOut,
		ExpectedFinalBalance: ExpectedFinalBalance(initial, totals),
		TotalIn:              totals.TotalIn,
		TotalOut:             totals.TotalOut,
		ByPaymentMethod:      totals.ByMethod,
		LineItems:            SortForDisplay(inRange),
		ManualEntries:        SortForDisplay(ManualOnly(inRange)),
		Warnings:             warningsInRange(norm.Warnings, from, to),
	}, nil
}

// warningsInRange scopes warnings to the reported range. A warning
// without a usable date survives every range: it flags exactly the
// records no date filter could place.
func warningsInRange(warns []Warning, from, to time.Time) []Warning {
	start := calendarDay(from)
	end := calendarDay(to)

	kept := make([]Warning, 0, len(warns))
	for _, w := range warns {
		if !w.Date.IsZero() {
			day := calendarDay(w.Date)
			if day.Before(start) || day.After(end) {
				continue
			}
		}
		kept = append(kept, w)
	}
	return kept
}

// BuildDailyCorte is the single-day corte: one explicit date, same pipeline.
func BuildDailyCorte(snap Snapshot, day time.Time) (*ReconciliationReport, error) {
	return BuildReport(snap, day, day)
}
