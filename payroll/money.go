/*
Package payroll provides the core payroll calculation engine.

PURPOSE:
  This package computes monthly payslips from attendance and contract data:
  basic salary components, overtime, allowances and bonuses, deductions,
  statutory contributions, and income tax. It owns the payslip state
  machine and the bulk calculation orchestration.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A fixed-point monetary amount backed by decimal.Decimal
  - Ratio: A 4-decimal-place proportion (e.g., salary ratio)
  - One rounding rule: half-up to 2 decimal places, applied exactly once
    per monetary result

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, never float64 for money
  2. Single rounding: intermediate math stays unrounded; each final
     component is rounded once via Round()
  3. Determinism: same inputs and configuration always produce the same
     cents

USAGE:
  daily := basic.Div(payroll.Dec(30)).Round()
  pay := hours.Mul(hourly).Mul(multiplier).Round()

SEE ALSO:
  - config.go: Configuration snapshot and role allowance table
  - basic.go: Basic component calculation (daily/hourly rates, ratio)
  - engine.go: Payslip orchestration
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point monetary amount
// =============================================================================

type Money struct {
	value decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{value: d} }

func MoneyFromInt(v int64) Money { return Money{value: decimal.NewFromInt(v)} }

func MoneyFromFloat(v float64) Money { return Money{value: decimal.NewFromFloat(v)} }

// MoneyFromString parses a decimal string, falling back to zero on
// malformed input. Callers that must distinguish parse failures use
// ParseMoney.
func MoneyFromString(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return Money{value: d}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

func Dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var Zero = Money{}

func (m Money) Add(b Money) Money             { return Money{value: m.value.Add(b.value)} }
func (m Money) Sub(b Money) Money             { return Money{value: m.value.Sub(b.value)} }
func (m Money) Mul(s decimal.Decimal) Money   { return Money{value: m.value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money   { return Money{value: m.value.Div(s)} }
func (m Money) Neg() Money                    { return Money{value: m.value.Neg()} }
func (m Money) IsZero() bool                  { return m.value.IsZero() }
func (m Money) IsNegative() bool              { return m.value.IsNegative() }
func (m Money) IsPositive() bool              { return m.value.IsPositive() }
func (m Money) GreaterThan(b Money) bool      { return m.value.GreaterThan(b.value) }
func (m Money) LessThan(b Money) bool         { return m.value.LessThan(b.value) }
func (m Money) Cmp(b Money) int               { return m.value.Cmp(b.value) }
func (m Money) Equal(b Money) bool            { return m.value.Equal(b.value) }
func (m Money) Decimal() decimal.Decimal      { return m.value }
func (m Money) Float64() float64              { f, _ := m.value.Float64(); return f }

func (m Money) Min(b Money) Money {
	if m.LessThan(b) {
		return m
	}
	return b
}

func (m Money) Max(b Money) Money {
	if m.GreaterThan(b) {
		return m
	}
	return b
}

// Round applies the system-wide monetary rounding rule: half-up to
// 2 decimal places. Every monetary component is rounded exactly once,
// at the point it becomes a payslip line item.
func (m Money) Round() Money {
	return Money{value: roundHalfUp(m.value, 2)}
}

// roundHalfUp rounds to the given number of places with ties going up
// (0.005 -> 0.01), matching HALF_UP semantics regardless of sign.
func roundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	shifted := d.Shift(places)
	floor := shifted.Floor()
	if shifted.Sub(floor).GreaterThanOrEqual(decimal.NewFromFloat(0.5)) {
		floor = floor.Add(decimal.NewFromInt(1))
	}
	return floor.Shift(-places)
}

func (m Money) String() string { return m.value.StringFixed(2) }

// JSON round-trips through the decimal's string form, preserving
// precision.
func (m Money) MarshalJSON() ([]byte, error)  { return m.value.MarshalJSON() }
func (m *Money) UnmarshalJSON(b []byte) error { return m.value.UnmarshalJSON(b) }

// StringRaw returns the unrounded decimal text, used for persistence of
// values that carry more than 2 places (rates, ratios).
func (m Money) StringRaw() string { return m.value.String() }

// =============================================================================
// RATIO - 4-decimal-place proportion
// =============================================================================

// Ratio computes a/b rounded half-up to 4 decimal places.
// Returns zero when b is zero.
func Ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return roundHalfUp(a.Div(b), 4)
}

// ClampRatio caps a ratio at 1 (an entity cannot earn more than 100% of
// the prorated base through the ratio path).
func ClampRatio(r decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if r.GreaterThan(one) {
		return one
	}
	return r
}

// Percent converts a percentage figure (e.g. 8.0) to its multiplier (0.08).
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(decimal.NewFromInt(100))
}
