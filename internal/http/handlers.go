package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"caja/internal/core"
	"caja/internal/export"
	"caja/internal/ledger"
)

// archivedCorteView is one archived daily summary row.
type archivedCorteView struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Initial       float64 `json:"initial"`
	CashIn        float64 `json:"cashIn"`
	CashOut       float64 `json:"cashOut"`
	ExpectedFinal float64 `json:"expectedFinal"`
	LineCount     int     `json:"lineCount"`
}

// View models returned by the API. Amounts are pesos with two decimals.

type reportView struct {
	From                 string             `json:"from"`
	To                   string             `json:"to"`
	InitialBalance       float64            `json:"initialBalance"`
	InitialSetBy         string             `json:"initialSetBy,omitempty"`
	CashIn               float64            `json:"cashIn"`
	CashOut              float64            `json:"cashOut"`
	ExpectedFinalBalance float64            `json:"expectedFinalBalance"`
	TotalIn              float64            `json:"totalIn"`
	TotalOut             float64            `json:"totalOut"`
	ByPaymentMethod      map[string]float64 `json:"byPaymentMethod"`
	LineItems            []eventView        `json:"lineItems"`
	ManualEntries        []eventView        `json:"manualEntries"`
	Warnings             []warningView      `json:"warnings,omitempty"`
}

type eventView struct {
	ID            string  `json:"id"`
	Timestamp     string  `json:"timestamp"`
	Direction     string  `json:"direction"`
	Source        string  `json:"source"`
	RelatedType   string  `json:"relatedType,omitempty"`
	RelatedID     string  `json:"relatedId,omitempty"`
	PaymentMethod string  `json:"paymentMethod"`
	Amount        float64 `json:"amount"`
	Actor         string  `json:"actor,omitempty"`
	Description   string  `json:"description"`
}

type warningView struct {
	RecordID string `json:"recordId"`
	Field    string `json:"field"`
	Detail   string `json:"detail"`
}

type monthlyCloseView struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	ServiceIncome float64 `json:"serviceIncome"`
	POSIncome     float64 `json:"posIncome"`
	TotalProfit   float64 `json:"totalProfit"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`
}

func newReportView(r *ledger.ReconciliationReport) reportView {
	v := reportView{
		From:                 r.RangeStart.Format("2006-01-02"),
		To:                   r.RangeEnd.Format("2006-01-02"),
		InitialBalance:       r.InitialBalance.Pesos(),
		InitialSetBy:         r.InitialSetBy,
		CashIn:               r.CashIn.Pesos(),
		CashOut:              r.CashOut.Pesos(),
		ExpectedFinalBalance: r.ExpectedFinalBalance.Pesos(),
		TotalIn:              r.TotalIn.Pesos(),
		TotalOut:             r.TotalOut.Pesos(),
		ByPaymentMethod:      make(map[string]float64, len(r.ByPaymentMethod)),
		LineItems:            make([]eventView, 0, len(r.LineItems)),
		ManualEntries:        make([]eventView, 0, len(r.ManualEntries)),
	}
	for method, amount := range r.ByPaymentMethod {
		v.ByPaymentMethod[method] = amount.Pesos()
	}
	for _, e := range r.LineItems {
		v.LineItems = append(v.LineItems, newEventView(e))
	}
	for _, e := range r.ManualEntries {
		v.ManualEntries = append(v.ManualEntries, newEventView(e))
	}
	for _, w := range r.Warnings {
		v.Warnings = append(v.Warnings, warningView{RecordID: w.RecordID, Field: w.Field, Detail: w.Detail})
	}
	return v
}

func newEventView(e core.MonetaryEvent) eventView {
	return eventView{
		ID:            e.ID,
		Timestamp:     e.Timestamp.Format(time.RFC3339),
		Direction:     string(e.Direction),
		Source:        string(e.Source),
		RelatedType:   e.RelatedType,
		RelatedID:     e.RelatedID,
		PaymentMethod: e.PaymentMethod,
		Amount:        e.Amount.Pesos(),
		Actor:         e.Actor,
		Description:   e.Description,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps validation errors to 422 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyConcept),
		errors.Is(err, core.ErrMissingID),
		errors.Is(err, core.ErrUnknownLedgerType):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func parseDateParam(r *http.Request, name string) (time.Time, bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, false, nil
	}
	ts, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parameter %q: %w", name, core.ErrInvalidDate)
	}
	return ts, true, nil
}

func (s *Server) handleCorte(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	day, ok, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		day = time.Now()
	}

	report, err := s.svc.Corte(r.Context(), day)
	if err != nil {
		slog.ErrorContext(r.Context(), "Corte computation failed", "error", err, "date", day.Format("2006-01-02"))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newReportView(report))
}

func (s *Server) handleCorteCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	day, ok, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		day = time.Now()
	}

	report, err := s.svc.Corte(r.Context(), day)
	if err != nil {
		slog.ErrorContext(r.Context(), "Corte computation failed", "error", err, "date", day.Format("2006-01-02"))
		writeError(w, statusFor(err), err.Error())
		return
	}

	filename := "corte_" + report.RangeStart.Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteReportCSV(w, report); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}

func (s *Server) handleCierre(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, okFrom, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, okTo, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !okFrom || !okTo {
		writeError(w, http.StatusBadRequest, "parameters \"from\" and \"to\" are required")
		return
	}

	report, err := s.svc.Cierre(r.Context(), from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Cierre computation failed", "error", err,
			"from", from.Format("2006-01-02"), "to", to.Format("2006-01-02"))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newReportView(report))
}

func (s *Server) handleCierreAnual(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2200 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}

	rows, err := s.svc.CierreAnual(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Cierre anual computation failed", "error", err, "year", year)
		writeError(w, statusFor(err), err.Error())
		return
	}

	views := make([]monthlyCloseView, 0, len(rows))
	for _, row := range rows {
		views = append(views, monthlyCloseView{
			Year:          row.Year,
			Month:         row.Month,
			ServiceIncome: row.ServiceIncome.Pesos(),
			POSIncome:     row.POSIncome.Pesos(),
			TotalProfit:   row.TotalProfit.Pesos(),
			TotalExpenses: row.TotalExpenses.Pesos(),
			NetProfit:     row.NetProfit.Pesos(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type movementRequest struct {
	Type          string  `json:"type"`
	Concept       string  `json:"concept"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Date          string  `json:"date,omitempty"`
	UserName      string  `json:"userName,omitempty"`
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := s.svc.RegisterMovement(r.Context(), core.LedgerRecord{
		Type:          strings.TrimSpace(req.Type),
		Concept:       strings.TrimSpace(req.Concept),
		Amount:        req.Amount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Date:          strings.TrimSpace(req.Date),
		UserName:      strings.TrimSpace(req.UserName),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Movement rejected", "error", err, "concept", req.Concept)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleArchivedCortes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	cortes, err := s.svc.ArchivedCortes(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Archived cortes lookup failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	views := make([]archivedCorteView, 0, len(cortes))
	for _, c := range cortes {
		views = append(views, archivedCorteView{
			ID:            c.ID,
			Date:          c.CorteDate,
			Initial:       core.Money{Cents: c.InitialCents}.Pesos(),
			CashIn:        core.Money{Cents: c.CashInCents}.Pesos(),
			CashOut:       core.Money{Cents: c.CashOutCents}.Pesos(),
			ExpectedFinal: core.Money{Cents: c.ExpectedCents}.Pesos(),
			LineCount:     c.LineCount,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var sale core.SaleRecord
	if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.svc.RecordSale(r.Context(), sale); err != nil {
		slog.ErrorContext(r.Context(), "Sale rejected", "error", err, "sale_id", sale.ID)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "id": sale.ID})
}

func (s *Server) handleRecordService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var svc core.ServiceRecord
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.svc.RecordService(r.Context(), svc); err != nil {
		slog.ErrorContext(r.Context(), "Service order rejected", "error", err, "service_id", svc.ID)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "id": svc.ID})
}

type openingBalanceRequest struct {
	Amount   float64 `json:"amount"`
	Date     string  `json:"date,omitempty"`
	UserID   string  `json:"userId,omitempty"`
	UserName string  `json:"userName,omitempty"`
}

func (s *Server) handleSetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req openingBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance := core.InitialCashBalance{
		Amount:   req.Amount,
		Date:     strings.TrimSpace(req.Date),
		UserID:   strings.TrimSpace(req.UserID),
		UserName: strings.TrimSpace(req.UserName),
	}
	if err := s.svc.SetOpeningBalance(r.Context(), balance); err != nil {
		slog.ErrorContext(r.Context(), "Opening balance rejected", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
