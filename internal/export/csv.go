// Package export renders reconciliation reports for external consumers:
// CSV rows for spreadsheet download and the row shape shared with the
// Google Sheets appender.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"caja/internal/core"
	"caja/internal/ledger"
)

var csvHeader = []string{
	"fecha", "tipo", "origen", "concepto", "metodo_pago",
	"monto", "actor", "registro", "nota",
}

// WriteReportCSV streams the report's line items as CSV, newest first,
// one row per monetary event plus a header.
func WriteReportCSV(w io.Writer, report *ledger.ReconciliationReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range report.LineItems {
		if err := cw.Write(eventRow(e)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func eventRow(e core.MonetaryEvent) []string {
	tipo := "Entrada"
	if e.Direction == core.Out {
		tipo = "Salida"
	}
	registrant := ""
	if e.Source == core.SourceManual {
		registrant = e.Actor
	}
	note := ""
	if e.RelatedID != "" {
		note = e.RelatedType + " " + e.RelatedID
	}
	return []string{
		e.Timestamp.Format("2006-01-02 15:04"),
		tipo,
		string(e.Source),
		e.Description,
		e.PaymentMethod,
		fmt.Sprintf("%.2f", e.Amount.Pesos()),
		e.Actor,
		registrant,
		note,
	}
}
