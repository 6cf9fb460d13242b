// Package ledger turns heterogeneous monetary records from the shop system
// into one reconciled view of the cash drawer: normalized events, deduplicated
// merges, range aggregates, expected drawer balances, corte de caja reports
// and monthly closings. Every function is pure over the snapshot it receives;
// nothing in the package keeps state between calls.
package ledger

import (
	"time"

	"caja/internal/core"
)

// Snapshot is a fixed view of the source collections at one point in time.
// Callers re-read it from storage whenever the collections change and invoke
// the pipeline again; the package never mutates it.
type Snapshot struct {
	Sales    []core.SaleRecord
	Services []core.ServiceRecord
	Ledger   []core.LedgerRecord
	Balances []core.InitialCashBalance
}

// Warning records a data-quality issue found while normalizing. A warning
// drops or adjusts a single event; it never aborts a computation.
type Warning struct {
	RecordID string
	Field    string
	Detail   string

	// Date is the record's calendar date when one could be parsed, so
	// reports can scope warnings to their range. Zero when the date
	// itself is what went wrong.
	Date time.Time
}
