package ledger

import (
	"time"

	"caja/internal/core"
)

// ExpectedFinalBalance applies the drawer formula:
//
//	expected = initial + cashSales + cashManualIn - cashManualOut
//
// Only Efectivo flows participate; card and transfer movements are shown
// in the method breakdown but never touch the physical drawer.
func ExpectedFinalBalance(initial core.Money, t Totals) core.Money {
	return initial.Add(t.CashSales).Add(t.CashManualIn).Sub(t.CashManualOut)
}

// InitialBalanceFor picks the authoritative opening-cash snapshot for the
// range: the most recent one whose date falls inside [from, to]. When none
// does, the initial balance is zero and the computation proceeds.
func InitialBalanceFor(balances []core.InitialCashBalance, from, to time.Time) (core.Money, string) {
	start := calendarDay(from)
	end := calendarDay(to)

	var (
		best     core.Money
		bestBy   string
		bestTime time.Time
		found    bool
	)
	for _, b := range balances {
		ts, ok := parseDate(b.Date)
		if !ok {
			continue
		}
		day := calendarDay(ts)
		if day.Before(start) || day.After(end) {
			continue
		}
		amount, err := core.MoneyFromFloat(b.Amount)
		if err != nil {
			continue
		}
		if !found || ts.After(bestTime) {
			best, bestBy, bestTime, found = amount, b.UserName, ts, true
		}
	}
	return best, bestBy
}
