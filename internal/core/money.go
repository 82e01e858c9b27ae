// Package core holds the finance domain: money, dates, the owned entities
// (categories, transactions, budgets) and the pure aggregation that turns a
// month of transactions into a summary.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are stored with two decimal places and at most ten integer digits.
const (
	moneyScale     = 2
	maxMoneyDigits = 12
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	maxMoney         = decimal.New(1, maxMoneyDigits-moneyScale)
)

// Money is a fixed two-decimal amount. The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// ParseMoney parses a plain decimal string such as "12.34" or "12".
// Comma separators are accepted, more than two decimal places are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return NewMoney(d)
}

// NewMoney validates precision and range of d.
func NewMoney(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Round(moneyScale)) {
		return Money{}, ErrInvalidAmount
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: d.Round(moneyScale)}, nil
}

// MustMoney is ParseMoney for constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

// MoneyFromCents rebuilds an amount persisted as integer cents.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -moneyScale)}
}

func (m Money) Cents() int64 {
	return m.d.Shift(moneyScale).IntPart()
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) IsZero() bool { return m.d.IsZero() }

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return m.d.StringFixed(moneyScale)
}

// MarshalJSON emits a JSON string so clients never see float rounding.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both "12.34" and 12.34.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ErrInvalidAmount
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidAmount
		}
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
