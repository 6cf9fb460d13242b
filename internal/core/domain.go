package core

import (
	"errors"
	"time"
)

// Direction tells whether money entered or left the drawer.
type Direction string

// Source identifies the business process a monetary event originated from.
type Source string

const (
	In  Direction = "in"
	Out Direction = "out"
)

const (
	SourceSale     Source = "Sale"
	SourceService  Source = "Service"
	SourceManual   Source = "ManualLedger"
	SourcePurchase Source = "Purchase"
	SourceFleet    Source = "Fleet"
)

// Well-known payment methods. Anything else is carried as an opaque string
// and shows up in the payment-method breakdown untouched.
const (
	MethodEfectivo      = "Efectivo"
	MethodTarjeta       = "Tarjeta"
	MethodTarjetaMSI    = "Tarjeta MSI"
	MethodTransferencia = "Transferencia"
)

// Record statuses the normalizer filters on.
const (
	StatusCancelado  = "Cancelado"
	StatusCotizacion = "Cotizacion"
	StatusEntregado  = "Entregado"
)

// RelatedType values marking a ledger entry as system-generated from
// another record. Entries with any of these never merge alongside that
// record's own payment breakdown.
const (
	RelatedSale     = "Sale"
	RelatedService  = "Service"
	RelatedPurchase = "Purchase"
	RelatedManual   = "Manual"
)

var (
	ErrInvalidRange      = errors.New("invalid date range")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyConcept      = errors.New("empty concept")
	ErrMissingID         = errors.New("missing record id")
	ErrUnknownLedgerType = errors.New("unknown ledger entry type")
)

// MonetaryEvent is the canonical shape every money movement is normalized
// to before any aggregation. Amount is always a non-negative magnitude;
// the sign lives in Direction.
type MonetaryEvent struct {
	ID            string
	Timestamp     time.Time
	Direction     Direction
	Source        Source
	RelatedType   string
	RelatedID     string
	PaymentMethod string
	Amount        Money
	Actor         string
	Description   string
}

// SystemAttributed reports whether the event mirrors a Sale, Service or
// Purchase record and must therefore be excluded from merged views that
// already contain that record's payment-derived events.
func (e MonetaryEvent) SystemAttributed() bool {
	switch e.RelatedType {
	case RelatedSale, RelatedService, RelatedPurchase:
		return true
	}
	return false
}

// Validate checks the invariants every normalized event must hold.
func (e MonetaryEvent) Validate() error {
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if e.Direction != In && e.Direction != Out {
		return errors.New("invalid direction")
	}
	switch e.Source {
	case SourceSale, SourceService, SourceManual, SourcePurchase, SourceFleet:
	default:
		return errors.New("invalid source")
	}
	return nil
}
