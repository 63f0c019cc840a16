package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in integer minor units (cents). Arithmetic on
// balances happens exclusively in minor units; decimals only appear at the
// serialization boundary.
type Money int64

// MoneyFromDecimal converts a decimal amount (major units) to Money, rejecting
// values with more than two fraction digits.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than two fraction digits", d.String())
	}
	return Money(shifted.IntPart()), nil
}

// Decimal returns the amount in major units with two fraction digits of scale.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount with exactly two fraction digits, e.g. "100.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as an unquoted decimal number with exactly
// two fraction digits, matching the wire format the dashboard expects.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid monetary amount %q: %w", s, err)
	}
	parsed, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
