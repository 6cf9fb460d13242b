package ledger

import (
	"fmt"
	"strconv"

	"caja/internal/core"
)

// NormalizeResult carries the canonical event list plus the data-quality
// warnings accumulated while producing it.
type NormalizeResult struct {
	Events   []core.MonetaryEvent
	Warnings []Warning
}

// Normalize converts the snapshot's raw records into canonical monetary
// events. The output is deterministic: the same snapshot always yields the
// same events with the same IDs in the same order. Non-finite amounts are
// the only fatal condition; everything else degrades to a warning.
func Normalize(snap Snapshot) (NormalizeResult, error) {
	var res NormalizeResult

	for _, sale := range snap.Sales {
		if sale.Status == core.StatusCancelado {
			continue
		}
		events, warns, err := paymentEvents(paymentSource{
			prefix:        "sale:" + sale.ID,
			source:        core.SourceSale,
			payments:      sale.Payments,
			total:         sale.TotalAmount,
			defaultMethod: sale.PaymentMethod,
			dateChain:     []string{sale.SaleDate},
			actor:         sale.CustomerName,
			description:   "Venta " + sale.ID,
			recordID:      sale.ID,
		})
		if err != nil {
			return NormalizeResult{}, err
		}
		res.Events = append(res.Events, events...)
		res.Warnings = append(res.Warnings, warns...)
	}

	for _, svc := range snap.Services {
		// Quotes and cancelled orders never touch the drawer.
		if svc.Status != core.StatusEntregado {
			continue
		}
		actor := svc.ServiceAdvisorName
		if actor == "" {
			actor = svc.CustomerName
		}
		events, warns, err := paymentEvents(paymentSource{
			prefix:        "svc:" + svc.ID,
			source:        core.SourceService,
			payments:      svc.Payments,
			total:         svc.TotalCost,
			defaultMethod: svc.PaymentMethod,
			dateChain:     []string{svc.DeliveryDateTime, svc.ServiceDate},
			actor:         actor,
			description:   "Servicio " + svc.ID,
			recordID:      svc.ID,
		})
		if err != nil {
			return NormalizeResult{}, err
		}
		res.Events = append(res.Events, events...)
		res.Warnings = append(res.Warnings, warns...)
	}

	for _, entry := range snap.Ledger {
		event, warn, err := ledgerEvent(entry)
		if err != nil {
			return NormalizeResult{}, err
		}
		if warn != nil {
			res.Warnings = append(res.Warnings, *warn)
		}
		if event != nil {
			res.Events = append(res.Events, *event)
		}
	}

	return res, nil
}

type paymentSource struct {
	prefix        string
	source        core.Source
	payments      []core.PaymentEntry
	total         float64
	defaultMethod string
	dateChain     []string
	actor         string
	description   string
	recordID      string
}

// paymentEvents emits one event per payment entry, or a single fallback
// event on the record's aggregate total when no payments array exists.
func paymentEvents(src paymentSource) ([]core.MonetaryEvent, []Warning, error) {
	entries := src.payments
	if len(entries) == 0 {
		method := src.defaultMethod
		if method == "" {
			method = core.MethodEfectivo
		}
		entries = []core.PaymentEntry{{Method: method, Amount: src.total}}
	}

	var events []core.MonetaryEvent
	var warns []Warning
	for i, p := range entries {
		amount, err := core.MoneyFromFloat(p.Amount)
		if err != nil {
			return nil, nil, fmt.Errorf("record %s payment %d: %w", src.recordID, i, err)
		}

		ts, ok := resolveDate(append([]string{p.Date}, src.dateChain...)...)
		if !ok {
			warns = append(warns, Warning{
				RecordID: src.recordID,
				Field:    "date",
				Detail:   "no parseable date in fallback chain, payment dropped",
			})
			continue
		}

		// Refunds arrive as negative payments: flip the direction and
		// keep the magnitude, so Amount stays non-negative.
		direction := core.In
		if amount.IsNegative() {
			direction = core.Out
			amount = amount.Abs()
		}

		method := p.Method
		if method == "" {
			method = core.MethodEfectivo
		}

		events = append(events, core.MonetaryEvent{
			ID:            src.prefix + "#" + strconv.Itoa(i),
			Timestamp:     ts,
			Direction:     direction,
			Source:        src.source,
			PaymentMethod: method,
			Amount:        amount,
			Actor:         src.actor,
			Description:   src.description,
		})
	}
	return events, warns, nil
}

// ledgerEvent converts one manual ledger record into at most one event.
// An unrecognized type drops the entry instead of guessing a direction:
// defaulting to income would silently inflate the drawer.
func ledgerEvent(entry core.LedgerRecord) (*core.MonetaryEvent, *Warning, error) {
	amount, err := core.MoneyFromFloat(entry.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger entry %s: %w", entry.ID, err)
	}

	var direction core.Direction
	switch entry.Type {
	case "in", "Entrada":
		direction = core.In
	case "out", "Salida":
		direction = core.Out
	default:
		ts, _ := parseDate(entry.Date)
		return nil, &Warning{
			RecordID: entry.ID,
			Field:    "type",
			Detail:   fmt.Sprintf("unknown ledger type %q, entry excluded", entry.Type),
			Date:     ts,
		}, nil
	}

	ts, ok := parseDate(entry.Date)
	if !ok {
		return nil, &Warning{
			RecordID: entry.ID,
			Field:    "date",
			Detail:   "unparseable date, entry excluded",
		}, nil
	}

	if amount.IsNegative() {
		if direction == core.In {
			direction = core.Out
		} else {
			direction = core.In
		}
		amount = amount.Abs()
	}

	method := entry.PaymentMethod
	if method == "" {
		method = core.MethodEfectivo
	}

	return &core.MonetaryEvent{
		ID:            "mov:" + entry.ID + "#0",
		Timestamp:     ts,
		Direction:     direction,
		Source:        core.SourceManual,
		RelatedType:   entry.RelatedType,
		RelatedID:     entry.RelatedID,
		PaymentMethod: method,
		Amount:        amount,
		Actor:         entry.UserName,
		Description:   entry.Concept,
	}, nil, nil
}
