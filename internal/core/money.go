// Package core holds the canonical domain types for the cash-flow
// reconciliation engine: money in integer cents, the normalized
// MonetaryEvent shape, and the raw record shapes the shop system feeds in.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer cents. All arithmetic in the engine runs
// on cents so totals are exact to the cent.
type Money struct {
	Cents int64
}

// Pesos returns the amount as a float64 for display only.
// Never feed the result back into a calculation.
func (m Money) Pesos() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// IsNegative reports whether the underlying cents are below zero. Raw
// records may carry negative amounts (refunds); normalized events never do.
func (m Money) IsNegative() bool { return m.Cents < 0 }

// MoneyFromFloat converts a raw float amount from the document store into
// cents, rounding half-up on the third decimal. Non-finite inputs are a
// caller error: they would silently corrupt any total they touch.
func MoneyFromFloat(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}, ErrInvalidAmount
	}
	cents := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0)
	return Money{Cents: cents.IntPart()}, nil
}

// ParseMoney converts a decimal string (dot or comma separator) into
// positive cents. Used for amounts typed into the manual-movement form.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}
