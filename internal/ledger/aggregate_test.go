package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caja/internal/core"
)

func at(ts time.Time, dir core.Direction, src core.Source, method string, cents int64) core.MonetaryEvent {
	return core.MonetaryEvent{
		ID:            "e",
		Timestamp:     ts,
		Direction:     dir,
		Source:        src,
		PaymentMethod: method,
		Amount:        core.Money{Cents: cents},
	}
}

func TestFilterRangeBoundaries(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	events := []core.MonetaryEvent{
		at(from, core.In, core.SourceSale, core.MethodEfectivo, 1),                            // exactly at from: in
		at(to.Add(24*time.Hour-time.Nanosecond), core.In, core.SourceSale, "Tarjeta", 2),     // last tick of to: in
		at(to.AddDate(0, 0, 1), core.In, core.SourceSale, "Tarjeta", 4),                      // first tick past to: out
		at(from.Add(-time.Nanosecond), core.In, core.SourceSale, "Tarjeta", 8),               // before from: out
		{ID: "zero", Direction: core.In, Source: core.SourceSale, Amount: core.Money{Cents: 16}}, // zero timestamp: out
	}

	got, err := FilterRange(events, from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), Aggregate(got).TotalIn.Cents)
}

// A record timestamp pinned to UTC and a query built in the shop's local
// zone must agree on which day the event belongs to.
func TestFilterRangeCrossZone(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	events := []core.MonetaryEvent{
		at(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), core.In, core.SourceSale, core.MethodEfectivo, 1),
	}

	got, err := FilterRange(events, day, day)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	previous, err := FilterRange(events, day.AddDate(0, 0, -1), day.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Empty(t, previous)
}

func TestFilterRangeReversedIsCallerError(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := FilterRange(nil, from, from.AddDate(0, 0, -3))
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestFilterRangeSingleDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	events := []core.MonetaryEvent{
		at(day.Add(14*time.Hour), core.In, core.SourceSale, core.MethodEfectivo, 5),
	}
	got, err := FilterRange(events, day, day)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAggregateGroups(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []core.MonetaryEvent{
		at(ts, core.In, core.SourceSale, core.MethodEfectivo, 30000),
		at(ts, core.In, core.SourceService, core.MethodEfectivo, 20000),
		at(ts, core.In, core.SourceSale, core.MethodTarjeta, 15000),
		at(ts, core.In, core.SourceManual, core.MethodEfectivo, 5000),
		at(ts, core.Out, core.SourceManual, core.MethodEfectivo, 10000),
		at(ts, core.Out, core.SourceManual, core.MethodTransferencia, 2500),
	}

	got := Aggregate(events)
	assert.Equal(t, int64(70000), got.TotalIn.Cents)
	assert.Equal(t, int64(12500), got.TotalOut.Cents)
	assert.Equal(t, int64(55000), got.CashIn.Cents)
	assert.Equal(t, int64(10000), got.CashOut.Cents)
	assert.Equal(t, int64(50000), got.CashSales.Cents)
	assert.Equal(t, int64(5000), got.CashManualIn.Cents)
	assert.Equal(t, int64(10000), got.CashManualOut.Cents)
	assert.Equal(t, int64(45000), got.ByMethod[core.MethodEfectivo].Cents)
	assert.Equal(t, int64(15000), got.ByMethod[core.MethodTarjeta].Cents)
	assert.Equal(t, int64(-2500), got.ByMethod[core.MethodTransferencia].Cents)
}

func TestSortForDisplayStable(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []core.MonetaryEvent{
		{ID: "old", Timestamp: ts.Add(-time.Hour)},
		{ID: "a", Timestamp: ts},
		{ID: "b", Timestamp: ts},
		{ID: "new", Timestamp: ts.Add(time.Hour)},
	}

	sorted := SortForDisplay(events)
	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"new", "a", "b", "old"}, ids)
	// Input untouched.
	assert.Equal(t, "old", events[0].ID)
}
