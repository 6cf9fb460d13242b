package ledger

import "caja/internal/core"

// MonthlyClose is one row of the yearly cierre: revenue, profit and
// expenses for a calendar month, independent of cash-drawer concerns.
type MonthlyClose struct {
	Year  int
	Month int // 1-12

	ServiceIncome core.Money
	POSIncome     core.Money
	TotalProfit   core.Money
	TotalExpenses core.Money
	NetProfit     core.Money
}

// ProfitCalculator is the external pricing collaborator: it knows unit
// costs and sale prices, this package only sums what it reports.
type ProfitCalculator interface {
	SaleProfit(core.SaleRecord) core.Money
	ServiceProfit(core.ServiceRecord) core.Money
}

// BuildMonthlyCloses produces twelve rows for the requested year, most
// recent month first. Months with no activity yield all-zero rows, not
// errors. A nil ProfitCalculator reports zero profit everywhere.
func BuildMonthlyCloses(snap Snapshot, year int, profit ProfitCalculator, fixed, payroll []core.ExpenseRecord) ([]MonthlyClose, error) {
	rows := make([]MonthlyClose, 12)
	for i := range rows {
		rows[i] = MonthlyClose{Year: year, Month: 12 - i}
	}
	row := func(month int) *MonthlyClose { return &rows[12-month] }

	for _, svc := range snap.Services {
		if svc.Status != core.StatusEntregado {
			continue
		}
		ts, ok := resolveDate(svc.DeliveryDateTime, svc.ServiceDate)
		if !ok || ts.Year() != year {
			continue
		}
		income, err := core.MoneyFromFloat(svc.TotalCost)
		if err != nil {
			return nil, err
		}
		r := row(int(ts.Month()))
		r.ServiceIncome = r.ServiceIncome.Add(income)
		if profit != nil {
			r.TotalProfit = r.TotalProfit.Add(profit.ServiceProfit(svc))
		}
	}

	for _, sale := range snap.Sales {
		if sale.Status == core.StatusCancelado {
			continue
		}
		ts, ok := parseDate(sale.SaleDate)
		if !ok || ts.Year() != year {
			continue
		}
		income, err := core.MoneyFromFloat(sale.TotalAmount)
		if err != nil {
			return nil, err
		}
		r := row(int(ts.Month()))
		r.POSIncome = r.POSIncome.Add(income)
		if profit != nil {
			r.TotalProfit = r.TotalProfit.Add(profit.SaleProfit(sale))
		}
	}

	// Fixed expenses and payroll repeat every month; missing lists sum
	// to zero instead of failing.
	var monthlyExpenses core.Money
	for _, e := range append(append([]core.ExpenseRecord{}, fixed...), payroll...) {
		amount, err := core.MoneyFromFloat(e.Amount)
		if err != nil {
			return nil, err
		}
		monthlyExpenses = monthlyExpenses.Add(amount)
	}

	for i := range rows {
		rows[i].TotalExpenses = monthlyExpenses
		rows[i].NetProfit = rows[i].TotalProfit.Sub(rows[i].TotalExpenses)
	}
	return rows, nil
}
