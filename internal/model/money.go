package model

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents.  Prices are stored as integer cents so that
// totals (quantity × price) are exact.
type Money int64

var (
	// ErrInvalidMoney is returned by ParseMoney for malformed or out of
	// range amounts.
	ErrInvalidMoney = errors.New("invalid amount")
	// ErrMoneyOverflow is returned when a product does not fit in Money.
	ErrMoneyOverflow = errors.New("amount out of range")
)

// moneyPattern is an optional sign, digits and at most two decimals.
var moneyPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]{0,2})?|\.[0-9]{1,2})$`)

// ParseMoney parses a decimal amount with at most two fractional digits,
// e.g. "100", "100.5", "-3.25".  Values are never routed through float64.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if !moneyPattern.MatchString(s) {
		return 0, ErrInvalidMoney
	}
	sign, digits := "", s
	if s[0] == '+' || s[0] == '-' {
		sign, digits = strings.TrimPrefix(s[:1], "+"), s[1:]
	}
	digits = strings.TrimSuffix(digits, ".")
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	d, err := decimal.NewFromString(sign + digits)
	if err != nil {
		return 0, ErrInvalidMoney
	}
	return fromDecimal(d, ErrInvalidMoney)
}

func fromDecimal(d decimal.Decimal, rangeErr error) (Money, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, ErrInvalidMoney
	}
	n := cents.BigInt()
	if !n.IsInt64() {
		return 0, rangeErr
	}
	return Money(n.Int64()), nil
}

// Mul returns m × n, or ErrMoneyOverflow when the result does not fit.
func (m Money) Mul(n int64) (Money, error) {
	return fromDecimal(m.decimal().Mul(decimal.NewFromInt(n)), ErrMoneyOverflow)
}

func (m Money) decimal() decimal.Decimal { return decimal.New(int64(m), -2) }

// Cents returns the raw amount in cents.
func (m Money) Cents() int64 { return int64(m) }

// String formats the amount with two decimals ("500.00").
func (m Money) String() string { return m.decimal().StringFixed(2) }

// MarshalJSON encodes the amount as a decimal string to keep precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both JSON numbers (100.5) and strings ("100.50").
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = str
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
