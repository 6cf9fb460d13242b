// Package storage persists the shop's source collections and archived
// cortes in SQLite. It hands the pure reconciliation pipeline an immutable
// snapshot plus a revision counter so callers can memoize per snapshot.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"caja/internal/core"
	"caja/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Revision returns the counter bumped on every write to a source
// collection. (revision, range) is the memoization key for reports.
func (r *SQLiteRepository) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'revision'`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}

func bumpRevision(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE meta SET value = value + 1 WHERE key = 'revision'`); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	return nil
}

// LoadSnapshot reads all source collections concurrently and returns them
// together with the revision observed before the reads started.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (ledger.Snapshot, int64, error) {
	rev, err := r.Revision(ctx)
	if err != nil {
		return ledger.Snapshot{}, 0, err
	}

	var snap ledger.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sales, err := r.loadSales(gctx)
		snap.Sales = sales
		return err
	})
	g.Go(func() error {
		services, err := r.loadServices(gctx)
		snap.Services = services
		return err
	})
	g.Go(func() error {
		entries, err := r.loadLedgerEntries(gctx)
		snap.Ledger = entries
		return err
	})
	g.Go(func() error {
		balances, err := r.loadBalances(gctx)
		snap.Balances = balances
		return err
	})

	if err := g.Wait(); err != nil {
		return ledger.Snapshot{}, 0, err
	}
	return snap, rev, nil
}

func (r *SQLiteRepository) loadSales(ctx context.Context) ([]core.SaleRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sale_date, status, total_amount, payment_method, customer_name
		 FROM sales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var sales []core.SaleRecord
	for rows.Next() {
		var s core.SaleRecord
		if err := rows.Scan(&s.ID, &s.SaleDate, &s.Status, &s.TotalAmount, &s.PaymentMethod, &s.CustomerName); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	for i := range sales {
		payments, err := r.loadPayments(ctx, "sale_payments", "sale_id", sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Payments = payments
	}
	return sales, nil
}

func (r *SQLiteRepository) loadServices(ctx context.Context) ([]core.ServiceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, service_date, delivery_datetime, status, total_cost, payment_method, customer_name, advisor_name
		 FROM services ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var services []core.ServiceRecord
	for rows.Next() {
		var s core.ServiceRecord
		if err := rows.Scan(&s.ID, &s.ServiceDate, &s.DeliveryDateTime, &s.Status, &s.TotalCost, &s.PaymentMethod, &s.CustomerName, &s.ServiceAdvisorName); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	for i := range services {
		payments, err := r.loadPayments(ctx, "service_payments", "service_id", services[i].ID)
		if err != nil {
			return nil, err
		}
		services[i].Payments = payments
	}
	return services, nil
}

func (r *SQLiteRepository) loadPayments(ctx context.Context, table, fk, id string) ([]core.PaymentEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT method, amount, paid_at FROM %s WHERE %s = ? ORDER BY idx`, table, fk), id)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var payments []core.PaymentEntry
	for rows.Next() {
		var p core.PaymentEntry
		if err := rows.Scan(&p.Method, &p.Amount, &p.Date); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) loadLedgerEntries(ctx context.Context) ([]core.LedgerRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entry_date, type, amount, concept, user_name, related_type, related_id, payment_method
		 FROM ledger_entries ORDER BY entry_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []core.LedgerRecord
	for rows.Next() {
		var e core.LedgerRecord
		if err := rows.Scan(&e.ID, &e.Date, &e.Type, &e.Amount, &e.Concept, &e.UserName, &e.RelatedType, &e.RelatedID, &e.PaymentMethod); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) loadBalances(ctx context.Context) ([]core.InitialCashBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT balance_date, amount, user_id, user_name FROM cash_balances ORDER BY balance_date`)
	if err != nil {
		return nil, fmt.Errorf("query cash balances: %w", err)
	}
	defer rows.Close()

	var balances []core.InitialCashBalance
	for rows.Next() {
		var b core.InitialCashBalance
		if err := rows.Scan(&b.Date, &b.Amount, &b.UserID, &b.UserName); err != nil {
			return nil, fmt.Errorf("scan cash balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// MonthlyExpenses returns the fixed-expense and payroll lists summed by
// the yearly cierre.
func (r *SQLiteRepository) MonthlyExpenses(ctx context.Context) (fixed, payroll []core.ExpenseRecord, err error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, name, amount FROM monthly_expenses ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query monthly expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var e core.ExpenseRecord
		if err := rows.Scan(&kind, &e.Name, &e.Amount); err != nil {
			return nil, nil, fmt.Errorf("scan monthly expense: %w", err)
		}
		if kind == "payroll" {
			payroll = append(payroll, e)
		} else {
			fixed = append(fixed, e)
		}
	}
	return fixed, payroll, rows.Err()
}

// InsertLedgerEntry stores a manual drawer movement and bumps the revision.
func (r *SQLiteRepository) InsertLedgerEntry(ctx context.Context, e core.LedgerRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, entry_date, type, amount, concept, user_name, related_type, related_id, payment_method)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Type, e.Amount, e.Concept, e.UserName, e.RelatedType, e.RelatedID, e.PaymentMethod)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry saved",
		"id", e.ID, "type", e.Type, "amount", e.Amount, "concept", e.Concept)
	return nil
}

// SetInitialBalance records a counted opening-cash snapshot.
func (r *SQLiteRepository) SetInitialBalance(ctx context.Context, b core.InitialCashBalance) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cash_balances (balance_date, amount, user_id, user_name) VALUES (?, ?, ?, ?)`,
		b.Date, b.Amount, b.UserID, b.UserName)
	if err != nil {
		return fmt.Errorf("insert cash balance: %w", err)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertSale stores or replaces a sale and its payments in one transaction.
func (r *SQLiteRepository) UpsertSale(ctx context.Context, s core.SaleRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sales (id, sale_date, status, total_amount, payment_method, customer_name)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   sale_date = excluded.sale_date,
		   status = excluded.status,
		   total_amount = excluded.total_amount,
		   payment_method = excluded.payment_method,
		   customer_name = excluded.customer_name`,
		s.ID, s.SaleDate, s.Status, s.TotalAmount, s.PaymentMethod, s.CustomerName)
	if err != nil {
		return fmt.Errorf("upsert sale: %w", err)
	}
	if err := replacePayments(ctx, tx, "sale_payments", "sale_id", s.ID, s.Payments); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertService stores or replaces a service order and its payments.
func (r *SQLiteRepository) UpsertService(ctx context.Context, s core.ServiceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO services (id, service_date, delivery_datetime, status, total_cost, payment_method, customer_name, advisor_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   service_date = excluded.service_date,
		   delivery_datetime = excluded.delivery_datetime,
		   status = excluded.status,
		   total_cost = excluded.total_cost,
		   payment_method = excluded.payment_method,
		   customer_name = excluded.customer_name,
		   advisor_name = excluded.advisor_name`,
		s.ID, s.ServiceDate, s.DeliveryDateTime, s.Status, s.TotalCost, s.PaymentMethod, s.CustomerName, s.ServiceAdvisorName)
	if err != nil {
		return fmt.Errorf("upsert service: %w", err)
	}
	if err := replacePayments(ctx, tx, "service_payments", "service_id", s.ID, s.Payments); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func replacePayments(ctx context.Context, tx *sql.Tx, table, fk, id string, payments []core.PaymentEntry) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, fk), id); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for i, p := range payments {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (%s, idx, method, amount, paid_at) VALUES (?, ?, ?, ?, ?)`, table, fk),
			id, i, p.Method, p.Amount, p.Date)
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

// ArchivedCorte is one archived daily reconciliation summary.
type ArchivedCorte struct {
	ID            string
	CorteDate     string
	InitialCents  int64
	CashInCents   int64
	CashOutCents  int64
	ExpectedCents int64
	LineCount     int
}

// ArchiveCorte stores a computed corte summary and returns its row id.
// Archiving is idempotent per date: a new archive for the same date
// replaces the previous one.
func (r *SQLiteRepository) ArchiveCorte(ctx context.Context, report *ledger.ReconciliationReport) (string, error) {
	id := uuid.NewString()
	date := report.RangeStart.Format("2006-01-02")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corte_archive WHERE corte_date = ?`, date); err != nil {
		return "", fmt.Errorf("clear previous corte: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO corte_archive (id, corte_date, initial_cents, cash_in_cents, cash_out_cents, expected_cents, line_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, date,
		report.InitialBalance.Cents,
		report.CashIn.Cents,
		report.CashOut.Cents,
		report.ExpectedFinalBalance.Cents,
		len(report.LineItems))
	if err != nil {
		return "", fmt.Errorf("insert corte archive: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Corte archived", "id", id, "date", date,
		"expected_cents", report.ExpectedFinalBalance.Cents)
	return id, nil
}

// ArchivedCortes lists archived summaries, newest date first.
func (r *SQLiteRepository) ArchivedCortes(ctx context.Context, limit int) ([]ArchivedCorte, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, corte_date, initial_cents, cash_in_cents, cash_out_cents, expected_cents, line_count
		 FROM corte_archive ORDER BY corte_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query corte archive: %w", err)
	}
	defer rows.Close()

	var cortes []ArchivedCorte
	for rows.Next() {
		var c ArchivedCorte
		if err := rows.Scan(&c.ID, &c.CorteDate, &c.InitialCents, &c.CashInCents, &c.CashOutCents, &c.ExpectedCents, &c.LineCount); err != nil {
			return nil, fmt.Errorf("scan corte archive: %w", err)
		}
		cortes = append(cortes, c)
	}
	return cortes, rows.Err()
}
