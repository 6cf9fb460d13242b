// Package worker archives daily cortes whenever a source collection changes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"caja/internal/amqp"
	"caja/internal/ledger"
	"caja/internal/sheets"
)

// ArchiveStore is the slice of the storage layer the worker needs.
type ArchiveStore interface {
	LoadSnapshot(ctx context.Context) (ledger.Snapshot, int64, error)
	ArchiveCorte(ctx context.Context, report *ledger.ReconciliationReport) (string, error)
}

// ArchiveWorker recomputes and archives the corte for any day whose source
// records changed. A nil ReportWriter disables the spreadsheet mirror.
type ArchiveWorker struct {
	storage ArchiveStore
	writer  sheets.ReportWriter
}

func NewArchiveWorker(storage ArchiveStore, writer sheets.ReportWriter) *ArchiveWorker {
	return &ArchiveWorker{
		storage: storage,
		writer:  writer,
	}
}

// HandleSourceChanged processes a single change notification from AMQP.
func (w *ArchiveWorker) HandleSourceChanged(ctx context.Context, msg *amqp.SourceChangedMessage) error {
	slog.InfoContext(ctx, "Processing source change",
		"collection", msg.Collection,
		"date", msg.Date)

	day, err := time.ParseInLocation("2006-01-02", msg.Date, time.Local)
	if err != nil {
		// A malformed date can never succeed on retry, drop it.
		slog.ErrorContext(ctx, "Discarding change message with bad date",
			"collection", msg.Collection, "date", msg.Date, "error", err)
		return nil
	}

	report, err := w.ArchiveDay(ctx, day)
	if err != nil {
		return err
	}

	if w.writer == nil {
		return nil
	}
	if err := w.writer.AppendCorte(ctx, report); err != nil {
		// The local archive is authoritative; a failed mirror only loses
		// the spreadsheet copy.
		slog.ErrorContext(ctx, "Failed to mirror corte to spreadsheet",
			"date", day.Format("2006-01-02"),
			"error", err)
	}
	return nil
}

// ArchiveDay recomputes the corte for one day and stores the result.
// Re-archiving the same day replaces the previous row.
func (w *ArchiveWorker) ArchiveDay(ctx context.Context, day time.Time) (*ledger.ReconciliationReport, error) {
	snap, rev, err := w.storage.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	report, err := ledger.BuildDailyCorte(snap, day)
	if err != nil {
		return nil, fmt.Errorf("build corte for %s: %w", day.Format("2006-01-02"), err)
	}

	id, err := w.storage.ArchiveCorte(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("archive corte: %w", err)
	}

	slog.InfoContext(ctx, "Corte archived",
		"archive_id", id,
		"date", day.Format("2006-01-02"),
		"revision", rev,
		"expected_final_cents", report.ExpectedFinalBalance.Cents)
	return report, nil
}

// RunPeriodic re-archives the current day on a fixed interval, as a backup
// for lost change notifications. Blocks until the context is cancelled.
func (w *ArchiveWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.ArchiveDay(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Periodic archive failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
