// Package services orchestrates the reconciliation pipeline over the
// persisted source collections: snapshot in, report out, with revision-keyed
// memoization and change notifications on writes.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"caja/internal/cache"
	"caja/internal/core"
	"caja/internal/ledger"
	"caja/internal/storage"
)

// Store is the slice of the storage layer the service needs.
type Store interface {
	LoadSnapshot(ctx context.Context) (ledger.Snapshot, int64, error)
	MonthlyExpenses(ctx context.Context) (fixed, payroll []core.ExpenseRecord, err error)
	InsertLedgerEntry(ctx context.Context, e core.LedgerRecord) error
	SetInitialBalance(ctx context.Context, b core.InitialCashBalance) error
	UpsertSale(ctx context.Context, s core.SaleRecord) error
	UpsertService(ctx context.Context, s core.ServiceRecord) error
	ArchivedCortes(ctx context.Context, limit int) ([]storage.ArchivedCorte, error)
	Close() error
}

// Publisher emits change notifications for the archive worker. A nil
// publisher disables notifications without failing any request.
type Publisher interface {
	PublishSourceChanged(ctx context.Context, collection, date string) error
	Close() error
}

// CajaService computes cortes and cierres on demand. Reports are memoized
// by (storage revision, range): two callers with different ranges or
// snapshots never see each other's result.
type CajaService struct {
	store     Store
	publisher Publisher
	profit    ledger.ProfitCalculator

	reportCache *cache.LRUCache[*ledger.ReconciliationReport]
	yearCache   *cache.LRUCache[[]ledger.MonthlyClose]
}

func NewCajaService(store Store, publisher Publisher, profit ledger.ProfitCalculator, cacheTTL time.Duration) *CajaService {
	return &CajaService{
		store:       store,
		publisher:   publisher,
		profit:      profit,
		reportCache: cache.NewLRUCache[*ledger.ReconciliationReport](128, cacheTTL),
		yearCache:   cache.NewLRUCache[[]ledger.MonthlyClose](16, cacheTTL),
	}
}

// Caches registers the service's caches with a cleanup manager.
func (s *CajaService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.reportCache, s.yearCache}
}

// Corte computes the single-day reconciliation report.
func (s *CajaService) Corte(ctx context.Context, day time.Time) (*ledger.ReconciliationReport, error) {
	return s.report(ctx, day, day)
}

// Cierre computes the reconciliation report for an explicit range.
func (s *CajaService) Cierre(ctx context.Context, from, to time.Time) (*ledger.ReconciliationReport, error) {
	return s.report(ctx, from, to)
}

func (s *CajaService) report(ctx context.Context, from, to time.Time) (*ledger.ReconciliationReport, error) {
	snap, rev, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	key := reportKey(rev, from, to)
	if cached, ok := s.reportCache.Get(key); ok {
		return cached, nil
	}

	report, err := ledger.BuildReport(snap, from, to)
	if err != nil {
		return nil, err
	}
	for _, w := range report.Warnings {
		slog.WarnContext(ctx, "Data-quality issue in source collections",
			"record_id", w.RecordID, "field", w.Field, "detail", w.Detail)
	}

	s.reportCache.Set(key, report)
	return report, nil
}

// CierreAnual computes the twelve monthly closing rows for a year.
func (s *CajaService) CierreAnual(ctx context.Context, year int) ([]ledger.MonthlyClose, error) {
	snap, rev, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	fixed, payroll, err := s.store.MonthlyExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load monthly expenses: %w", err)
	}

	key := "cierre-anual:" + strconv.FormatInt(rev, 10) + ":" + strconv.Itoa(year)
	if cached, ok := s.yearCache.Get(key); ok {
		return cached, nil
	}

	rows, err := ledger.BuildMonthlyCloses(snap, year, s.profit, fixed, payroll)
	if err != nil {
		return nil, err
	}
	s.yearCache.Set(key, rows)
	return rows, nil
}

// RegisterMovement validates and stores a manual drawer movement, then
// notifies the archive worker. A movement the service writes itself is
// always free-standing: RelatedType is forced to Manual.
func (s *CajaService) RegisterMovement(ctx context.Context, e core.LedgerRecord) (core.LedgerRecord, error) {
	switch e.Type {
	case "in", "Entrada", "out", "Salida":
	default:
		return core.LedgerRecord{}, fmt.Errorf("type %q: %w", e.Type, core.ErrUnknownLedgerType)
	}
	if e.Concept == "" {
		return core.LedgerRecord{}, core.ErrEmptyConcept
	}
	if _, err := core.MoneyFromFloat(e.Amount); err != nil {
		return core.LedgerRecord{}, err
	}
	if e.Amount <= 0 {
		return core.LedgerRecord{}, core.ErrInvalidAmount
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date == "" {
		e.Date = time.Now().Format(time.RFC3339)
	}
	e.RelatedType = core.RelatedManual
	e.RelatedID = ""
	if e.PaymentMethod == "" {
		e.PaymentMethod = core.MethodEfectivo
	}

	if err := s.store.InsertLedgerEntry(ctx, e); err != nil {
		return core.LedgerRecord{}, fmt.Errorf("save movement: %w", err)
	}

	s.notify(ctx, "ledger", e.Date)
	return e, nil
}

// RecordSale stores or replaces a sale pushed by the shop system.
func (s *CajaService) RecordSale(ctx context.Context, sale core.SaleRecord) error {
	if sale.ID == "" {
		return fmt.Errorf("sale: %w", core.ErrMissingID)
	}
	if _, err := core.MoneyFromFloat(sale.TotalAmount); err != nil {
		return err
	}
	for _, p := range sale.Payments {
		if _, err := core.MoneyFromFloat(p.Amount); err != nil {
			return err
		}
	}

	if err := s.store.UpsertSale(ctx, sale); err != nil {
		return fmt.Errorf("save sale: %w", err)
	}

	s.notify(ctx, "sales", sale.SaleDate)
	return nil
}

// RecordService stores or replaces a service order pushed by the shop system.
func (s *CajaService) RecordService(ctx context.Context, svc core.ServiceRecord) error {
	if svc.ID == "" {
		return fmt.Errorf("service order: %w", core.ErrMissingID)
	}
	if _, err := core.MoneyFromFloat(svc.TotalCost); err != nil {
		return err
	}
	for _, p := range svc.Payments {
		if _, err := core.MoneyFromFloat(p.Amount); err != nil {
			return err
		}
	}

	if err := s.store.UpsertService(ctx, svc); err != nil {
		return fmt.Errorf("save service: %w", err)
	}

	date := svc.DeliveryDateTime
	if date == "" {
		date = svc.ServiceDate
	}
	s.notify(ctx, "services", date)
	return nil
}

// SetOpeningBalance records the counted opening cash for a day.
func (s *CajaService) SetOpeningBalance(ctx context.Context, b core.InitialCashBalance) error {
	if _, err := core.MoneyFromFloat(b.Amount); err != nil {
		return err
	}
	if b.Amount < 0 {
		return core.ErrInvalidAmount
	}
	if b.Date == "" {
		b.Date = time.Now().Format(time.RFC3339)
	}

	if err := s.store.SetInitialBalance(ctx, b); err != nil {
		return fmt.Errorf("save opening balance: %w", err)
	}

	s.notify(ctx, "balances", b.Date)
	return nil
}

// ArchivedCortes lists recently archived daily summaries, newest first.
func (s *CajaService) ArchivedCortes(ctx context.Context, limit int) ([]storage.ArchivedCorte, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	cortes, err := s.store.ArchivedCortes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load archived cortes: %w", err)
	}
	return cortes, nil
}

func (s *CajaService) notify(ctx context.Context, collection, date string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "No publisher configured, skipping change notification",
			"collection", collection)
		return
	}
	day := date
	if ts, err := time.Parse(time.RFC3339, date); err == nil {
		day = ts.Format("2006-01-02")
	} else if len(day) > 10 {
		day = day[:10]
	}
	if err := s.publisher.PublishSourceChanged(ctx, collection, day); err != nil {
		// The movement is saved; a lost notification only delays archiving.
		slog.ErrorContext(ctx, "Failed to publish change notification",
			"collection", collection, "date", day, "error", err)
	}
}

// Close closes storage and publisher connections.
func (s *CajaService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close caja service: %v", errs)
	}
	return nil
}

func reportKey(rev int64, from, to time.Time) string {
	return "report:" + strconv.FormatInt(rev, 10) + ":" + from.Format("2006-01-02") + ":" + to.Format("2006-01-02")
}
