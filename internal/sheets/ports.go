package sheets

import (
	"context"

	"caja/internal/ledger"
)

// Ports for outbound adapters.
type (
	// ReportWriter appends an archived corte's rows to an external
	// spreadsheet. Implementations own formatting and auth.
	ReportWriter interface {
		AppendCorte(ctx context.Context, report *ledger.ReconciliationReport) error
	}
)
