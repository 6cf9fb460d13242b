package ledger

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caja/internal/core"
)

func TestNormalizeSalePayments(t *testing.T) {
	snap := Snapshot{
		Sales: []core.SaleRecord{{
			ID:       "S1",
			SaleDate: "2025-03-10",
			Status:   "Pagado",
			Payments: []core.PaymentEntry{
				{Method: core.MethodEfectivo, Amount: 150.50, Date: "2025-03-10T12:30:00Z"},
				{Method: core.MethodTarjeta, Amount: 49.50},
			},
			CustomerName: "Ana",
		}},
	}

	res, err := Normalize(snap)
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Empty(t, res.Warnings)

	first := res.Events[0]
	assert.Equal(t, "sale:S1#0", first.ID)
	assert.Equal(t, core.In, first.Direction)
	assert.Equal(t, core.SourceSale, first.Source)
	assert.Equal(t, int64(15050), first.Amount.Cents)
	assert.Equal(t, "Ana", first.Actor)

	second := res.Events[1]
	assert.Equal(t, "sale:S1#1", second.ID)
	// No payment date: falls back to the sale date.
	assert.Equal(t, 10, second.Timestamp.Day())
	assert.Equal(t, core.MethodTarjeta, second.PaymentMethod)
}

func TestNormalizeFallbackToTotal(t *testing.T) {
	snap := Snapshot{
		Sales: []core.SaleRecord{{
			ID:          "S2",
			SaleDate:    "2025-03-11",
			Status:      "Pagado",
			TotalAmount: 200,
		}},
	}

	res, err := Normalize(snap)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, int64(20000), res.Events[0].Amount.Cents)
	assert.Equal(t, core.MethodEfectivo, res.Events[0].PaymentMethod)
}

func TestNormalizeStatusExclusions(t *testing.T) {
	snap := Snapshot{
		Sales: []core.SaleRecord{{
			ID:       "S3",
			SaleDate: "2025-03-12",
			Status:   core.StatusCancelado,
			Payments: []core.PaymentEntry{{Method: core.MethodEfectivo, Amount: 999}},
		}},
		Services: []core.ServiceRecord{
			{
				ID:          "V1",
				ServiceDate: "2025-03-12",
				Status:      core.StatusCotizacion,
				Payments:    []core.PaymentEntry{{Method: core.MethodEfectivo, Amount: 500}},
			},
			{
				ID:          "V2",
				ServiceDate: "2025-03-12",
				Status:      "EnProceso",
				TotalCost:   100,
			},
		},
	}

	res, err := Normalize(snap)
	require.NoError(t, err)
	assert.Empty(t, res.Events, "cancelled, quoted and undelivered records produce no events")
}

func TestNormalizeServiceDateChain(t *testing.T) {
	snap := Snapshot{
		Services: []core.ServiceRecord{{
			ID:               "V3",
			ServiceDate:      "2025-02-01",
			DeliveryDateTime: "2025-02-05T09:00:00Z",
			Status:           core.StatusEntregado,
			TotalCost:        300,
		}},
	}

	res, err := Normalize(snap)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	// Delivery date wins over the service date.
	assert.Equal(t, 5, res.Events[0].Timestamp.Day())
}

func TestNormalizeUnparseableDateDropsEvent(t *testing.T) {
	snap := Snapshot{
		Sales: []core.SaleRecord{{
			ID:          "S4",
			SaleDate:    "pronto",
			Status:      "Pagado",
			TotalAmount: 50,
		}},
	}

	res, err := Normalize(snap)
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "S4", res.Warnings[0].RecordID)
	assert.Equal(t, "date", res.Warnings[0].Field)
}

func TestNormalizeNegativePaymentFlipsDirection(t *testing.T) {
	snap := Snapshot{
		Sales: []core.SaleRecord{{
			ID:       "S5",
			SaleDate: "2025-03-13",
			Status:   "Pagado",
			Payments: []core.PaymentEntry{{Method: core.MethodEfectivo, Amount: -80}},
		}},
	}

	res, err := Normalize(snap)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, core.Out, res.Events[0].Direction)
	assert.Equal(t, int64(8000), res.Events[0].Amount.Cents)
}

func TestNormalizeLedgerTypes(t *testing.T) {
	snap := Snapshot{
		Ledger: []core.LedgerRecord{
			{ID: "M1", Date: "2025-03-14", Type: "Entrada", Amount: 100, Concept: "fondo", UserName: "Luis"},
			{ID: "M2", Date: "2025-03-14", Type: "Salida", Amount: 40, Concept: "papeleria", UserName: "Luis"},
			{ID: "M3", Date: "2025-03-14", Type: "ajuste", Amount: 10, Concept: "??", UserName: "Luis"},
		},
	}

	res, err := Normalize(snap)
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Equal(t, core.In, res.Events[0].Direction)
	assert.Equal(t, core.Out, res.Events[1].Direction)

	// The unknown type never defaults to income; it is excluded and flagged.
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "M3", res.Warnings[0].RecordID)
	assert.Equal(t, "type", res.Warnings[0].Field)
}

func TestNormalizeNonFiniteAmountRejects(t *testing.T) {
	snap := Snapshot{
		Ledger: []core.LedgerRecord{
			{ID: "M4", Date: "2025-03-14", Type: "in", Amount: math.NaN()},
		},
	}
	_, err := Normalize(snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestNormalizeIdempotent(t *testing.T) {
	snap := Snapshot{
		Sales: []core.SaleRecord{{
			ID:       "S6",
			SaleDate: "2025-03-15",
			Status:   "Pagado",
			Payments: []core.PaymentEntry{
				{Method: core.MethodEfectivo, Amount: 10},
				{Method: core.MethodTransferencia, Amount: 20},
			},
		}},
		Ledger: []core.LedgerRecord{
			{ID: "M5", Date: "2025-03-15", Type: "in", Amount: 5, Concept: "x", UserName: "y"},
		},
	}

	a, err := Normalize(snap)
	require.NoError(t, err)
	b, err := Normalize(snap)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(a, b), "same snapshot must normalize identically")
}
