package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caja/internal/core"
)

type flatProfit struct{ cents int64 }

func (f flatProfit) SaleProfit(core.SaleRecord) core.Money    { return core.Money{Cents: f.cents} }
func (f flatProfit) ServiceProfit(core.ServiceRecord) core.Money { return core.Money{Cents: f.cents} }

func TestBuildMonthlyClosesShape(t *testing.T) {
	rows, err := BuildMonthlyCloses(Snapshot{}, 2025, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12, "twelve rows regardless of activity")
	assert.Equal(t, 12, rows[0].Month, "most recent month first")
	assert.Equal(t, 1, rows[11].Month)
	for _, r := range rows {
		assert.Equal(t, 2025, r.Year)
		assert.Zero(t, r.NetProfit.Cents)
	}
}

func TestBuildMonthlyCloses(t *testing.T) {
	snap := Snapshot{
		Services: []core.ServiceRecord{
			{ID: "V1", DeliveryDateTime: "2025-05-12", Status: core.StatusEntregado, TotalCost: 1000},
			{ID: "V2", ServiceDate: "2025-05-20", Status: core.StatusEntregado, TotalCost: 500},
			{ID: "V3", ServiceDate: "2025-05-25", Status: core.StatusCotizacion, TotalCost: 9999},
			{ID: "V4", ServiceDate: "2024-05-25", Status: core.StatusEntregado, TotalCost: 9999},
		},
		Sales: []core.SaleRecord{
			{ID: "S1", SaleDate: "2025-05-03", Status: "Pagado", TotalAmount: 250},
			{ID: "S2", SaleDate: "2025-06-03", Status: "Pagado", TotalAmount: 100},
			{ID: "S3", SaleDate: "2025-05-04", Status: core.StatusCancelado, TotalAmount: 77},
		},
	}
	fixed := []core.ExpenseRecord{{Name: "renta", Amount: 300}}
	payroll := []core.ExpenseRecord{{Name: "Luis", Amount: 200}, {Name: "Ana", Amount: 100}}

	rows, err := BuildMonthlyCloses(snap, 2025, flatProfit{cents: 10000}, fixed, payroll)
	require.NoError(t, err)

	var may, june MonthlyClose
	for _, r := range rows {
		switch r.Month {
		case 5:
			may = r
		case 6:
			june = r
		}
	}

	assert.Equal(t, int64(150000), may.ServiceIncome.Cents)
	assert.Equal(t, int64(25000), may.POSIncome.Cents)
	// Two delivered services + one counted sale, 100.00 profit each.
	assert.Equal(t, int64(30000), may.TotalProfit.Cents)
	assert.Equal(t, int64(60000), may.TotalExpenses.Cents)
	assert.Equal(t, int64(-30000), may.NetProfit.Cents)

	assert.Equal(t, int64(10000), june.POSIncome.Cents)
	assert.Equal(t, int64(10000), june.TotalProfit.Cents)
	assert.Equal(t, int64(60000), june.TotalExpenses.Cents, "fixed expenses repeat every month")
}
