package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caja/internal/core"
)

// The worked example from the drawer-reconciliation rules: 500 opening
// cash, a 300 cash service payment, a 100 manual salida.
func TestBuildDailyCorteScenario(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Services: []core.ServiceRecord{{
			ID:               "V1",
			ServiceDate:      "2025-03-08",
			DeliveryDateTime: "2025-03-10T11:00:00Z",
			Status:           core.StatusEntregado,
			TotalCost:        300,
			Payments:         []core.PaymentEntry{{Method: core.MethodEfectivo, Amount: 300}},
			CustomerName:     "Ana",
		}},
		Ledger: []core.LedgerRecord{{
			ID: "M1", Date: "2025-03-10T13:00:00Z", Type: "Salida",
			Amount: 100, Concept: "gasolina", UserName: "Luis",
			PaymentMethod: core.MethodEfectivo,
		}},
		Balances: []core.InitialCashBalance{{
			Date: "2025-03-10T08:00:00Z", Amount: 500, UserName: "Luis",
		}},
	}

	report, err := BuildDailyCorte(snap, day)
	require.NoError(t, err)

	assert.Equal(t, int64(50000), report.InitialBalance.Cents)
	assert.Equal(t, int64(30000), report.CashIn.Cents)
	assert.Equal(t, int64(10000), report.CashOut.Cents)
	// 500 + 300 + 0 - 100 = 700
	assert.Equal(t, int64(70000), report.ExpectedFinalBalance.Cents)

	require.Len(t, report.LineItems, 2)
	// Newest first.
	assert.Equal(t, "mov:M1#0", report.LineItems[0].ID)
	require.Len(t, report.ManualEntries, 1)
	assert.Equal(t, "gasolina", report.ManualEntries[0].Description)
}

// Adding a system mirror of the service payment must not change any total.
func TestBuildDailyCorteNoDoubleCounting(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Services: []core.ServiceRecord{{
			ID:               "V1",
			DeliveryDateTime: "2025-03-10T11:00:00Z",
			Status:           core.StatusEntregado,
			Payments:         []core.PaymentEntry{{Method: core.MethodEfectivo, Amount: 300}},
		}},
		Ledger: []core.LedgerRecord{{
			ID: "M2", Date: "2025-03-10T11:00:01Z", Type: "Entrada",
			Amount: 300, Concept: "Pago servicio V1",
			RelatedType: core.RelatedService, RelatedID: "V1",
			PaymentMethod: core.MethodEfectivo,
		}},
	}

	report, err := BuildDailyCorte(snap, day)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), report.CashIn.Cents, "300.00 once, not 600.00")
	assert.Equal(t, int64(30000), report.ExpectedFinalBalance.Cents)
	assert.Len(t, report.LineItems, 1)
	assert.Empty(t, report.ManualEntries)
}

func TestBuildReportZeroActivity(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	report, err := BuildReport(Snapshot{}, day, day.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Zero(t, report.ExpectedFinalBalance.Cents)
	assert.Zero(t, report.TotalIn.Cents)
	assert.Empty(t, report.LineItems)
	assert.Empty(t, report.Warnings)
}

func TestBuildReportReversedRange(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := BuildReport(Snapshot{}, day, day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

// A date-only sale has no zone of its own; queried from a deployment west
// of UTC it must still count on its own calendar day, not the day before.
func TestBuildDailyCorteNonUTCDeployment(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)
	snap := Snapshot{
		Sales: []core.SaleRecord{{
			ID:       "S9",
			SaleDate: "2025-03-10",
			Payments: []core.PaymentEntry{{Method: core.MethodEfectivo, Amount: 250}},
		}},
	}

	report, err := BuildDailyCorte(snap, time.Date(2025, 3, 10, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Len(t, report.LineItems, 1)
	assert.Equal(t, int64(25000), report.CashIn.Cents)

	previous, err := BuildDailyCorte(snap, time.Date(2025, 3, 9, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Empty(t, previous.LineItems)
	assert.Zero(t, previous.CashIn.Cents)
}

func TestBuildReportCarriesWarnings(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Ledger: []core.LedgerRecord{{
			ID: "M3", Date: "2025-03-10", Type: "ajuste", Amount: 10,
		}},
	}
	report, err := BuildDailyCorte(snap, day)
	require.NoError(t, err)
	assert.Empty(t, report.LineItems)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "M3", report.Warnings[0].RecordID)
}

// Warnings for records dated outside the range stay off the corte; only
// dateless warnings survive every range, since no filter can place them.
func TestBuildReportScopesWarningsToRange(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Ledger: []core.LedgerRecord{
			{ID: "M4", Date: "2025-01-02", Type: "ajuste", Amount: 10},
			{ID: "M5", Date: "sin fecha", Type: "Entrada", Amount: 10},
		},
	}

	report, err := BuildDailyCorte(snap, day)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "M5", report.Warnings[0].RecordID)
}
