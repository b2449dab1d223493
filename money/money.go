/*
Package money provides fixed-point currency amounts.

PURPOSE:
  All prices in the engine are carried as Money, a thin wrapper around
  decimal.Decimal. The original float arithmetic drifted by fractions of a
  cent across repeated cart recomputations; decimals eliminate that.

KEY RULES:
  1. Precision: No float64 arithmetic anywhere in pricing paths.
  2. Boundary conversion: Cents() is the ONLY place an amount becomes an
     integer minor-unit value, and it rounds exactly once. Callers convert
     at the external payment boundary, never earlier.
  3. Immutability: Every operation returns a new Money.

USAGE:
  price := money.MustParse("7.99")
  line := price.MulInt(6)        // $47.94
  line.Cents()                   // 4794

SEE ALSO:
  - pricing: tier prices built from Money
  - checkout: line-item builder performing the cents conversion
*/
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in major units (dollars).
type Money struct {
	value decimal.Decimal
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

func Zero() Money {
	return Money{value: decimal.Zero}
}

// FromFloat converts a float dollar amount. Intended for ingesting external
// input (JSON request bodies); internal code should prefer MustParse or Cents.
func FromFloat(v float64) Money {
	return Money{value: decimal.NewFromFloat(v)}
}

// FromCents builds an amount from integer minor units.
func FromCents(c int64) Money {
	return Money{value: decimal.New(c, -2)}
}

// Parse builds an amount from a decimal string such as "7.99".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return Money{value: d}, nil
}

// MustParse is Parse for compile-time constants; panics on bad input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// =============================================================================
// ARITHMETIC
// =============================================================================

func (m Money) Add(o Money) Money      { return Money{value: m.value.Add(o.value)} }
func (m Money) Sub(o Money) Money      { return Money{value: m.value.Sub(o.value)} }
func (m Money) MulInt(n int) Money     { return Money{value: m.value.Mul(decimal.NewFromInt(int64(n)))} }
func (m Money) DivInt(n int) Money     { return Money{value: m.value.Div(decimal.NewFromInt(int64(n)))} }
func (m Money) Neg() Money             { return Money{value: m.value.Neg()} }
func (m Money) IsZero() bool           { return m.value.IsZero() }
func (m Money) IsNegative() bool       { return m.value.IsNegative() }
func (m Money) IsPositive() bool       { return m.value.IsPositive() }
func (m Money) Equal(o Money) bool     { return m.value.Equal(o.value) }
func (m Money) LessThan(o Money) bool  { return m.value.LessThan(o.value) }
func (m Money) GreaterThan(o Money) bool { return m.value.GreaterThan(o.value) }

// =============================================================================
// BOUNDARY CONVERSION
// =============================================================================

// Cents converts to integer minor units, rounding half away from zero.
// This is the single point where rounding happens; bundle unit prices like
// $35.00/3 stay exact decimals until they cross this boundary.
func (m Money) Cents() int64 {
	return m.value.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Float64 returns the approximate float value. Display/logging only.
func (m Money) Float64() float64 {
	f, _ := m.value.Float64()
	return f
}

// String formats without a currency symbol, two decimal places ("7.99").
func (m Money) String() string {
	return m.value.StringFixed(2)
}

// MarshalJSON emits the amount as a fixed two-decimal JSON number string
// equivalent, e.g. 7.99. UnmarshalJSON accepts both numbers and strings so
// ledgers persisted by the earlier float implementation still load.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.StringFixed(4)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money amount %s: %w", string(b), err)
	}
	m.value = d
	return nil
}
