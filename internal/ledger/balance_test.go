package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"caja/internal/core"
)

func TestExpectedFinalBalanceFormula(t *testing.T) {
	cases := []struct {
		name                           string
		initial, sales, manIn, manOut  int64
		want                           int64
	}{
		{"all zero", 0, 0, 0, 0, 0},
		{"sales only", 0, 30000, 0, 0, 30000},
		{"worked example", 50000, 30000, 0, 10000, 70000},
		{"drawer can go negative", 0, 0, 0, 5000, -5000},
		{"to the cent", 12345, 67, 89, 11, 12490},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := Totals{
				CashSales:     core.Money{Cents: tc.sales},
				CashManualIn:  core.Money{Cents: tc.manIn},
				CashManualOut: core.Money{Cents: tc.manOut},
			}
			got := ExpectedFinalBalance(core.Money{Cents: tc.initial}, totals)
			assert.Equal(t, tc.want, got.Cents)
		})
	}
}

func TestInitialBalanceFor(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from

	balances := []core.InitialCashBalance{
		{Date: "2025-03-09", Amount: 111, UserName: "ayer"},
		{Date: "2025-03-10T08:00:00Z", Amount: 500, UserName: "Luis"},
		{Date: "2025-03-10T07:00:00Z", Amount: 400, UserName: "temprano"},
		{Date: "garbage", Amount: 999, UserName: "roto"},
		{Date: "2025-03-11", Amount: 222, UserName: "manana"},
	}

	got, setBy := InitialBalanceFor(balances, from, to)
	assert.Equal(t, int64(50000), got.Cents, "most recent snapshot inside the range wins")
	assert.Equal(t, "Luis", setBy)
}

func TestInitialBalanceMissingIsZero(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	got, setBy := InitialBalanceFor(nil, from, from)
	assert.Equal(t, int64(0), got.Cents)
	assert.Empty(t, setBy)
}
