package shared

import (
	"errors"
	"fmt"
	"math"
)

// Money value object. Amounts are stored in minor currency units
// (e.g. paise, cents) so arithmetic stays exact.
type Money struct {
	amount   int64
	currency string
}

var (
	// ErrCurrencyMismatch is returned when combining amounts of different currencies.
	ErrCurrencyMismatch = errors.New("cannot combine money with different currencies")

	// ErrAmountOverflow is returned when an arithmetic result does not fit in int64.
	ErrAmountOverflow = errors.New("money amount overflow")
)

// NewMoney creates a Money value from an amount in minor units.
func NewMoney(amount int64, currency string) *Money {
	return &Money{
		amount:   amount,
		currency: currency,
	}
}

// NewMoneyFromFloat converts an amount expressed in major units (e.g. 450.00)
// into minor units, rounding half up. Used at the upstream seam where prices
// arrive as decimal numbers.
func NewMoneyFromFloat(amount float64, currency string) *Money {
	return &Money{
		amount:   int64(math.Round(amount * 100)),
		currency: currency,
	}
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() string {
	return m.currency
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// Add returns a new Money value with the sum of both amounts.
func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, ErrCurrencyMismatch
	}
	sum := m.amount + other.amount
	if (other.amount > 0 && sum < m.amount) || (other.amount < 0 && sum > m.amount) {
		return nil, ErrAmountOverflow
	}
	return &Money{amount: sum, currency: m.currency}, nil
}

// Subtract returns a new Money value with the difference of both amounts.
func (m Money) Subtract(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, ErrCurrencyMismatch
	}
	return &Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Multiply returns the amount multiplied by a non-negative integer factor.
func (m Money) Multiply(factor int) (*Money, error) {
	if factor < 0 {
		return nil, errors.New("factor must be non-negative")
	}
	if factor != 0 && m.amount > math.MaxInt64/int64(factor) {
		return nil, ErrAmountOverflow
	}
	return &Money{amount: m.amount * int64(factor), currency: m.currency}, nil
}

// Percent returns rate% of the amount, rounded half up to the minor unit in a
// single pass. The result carries no intermediate rounding.
func (m Money) Percent(rate int64) (*Money, error) {
	if rate < 0 {
		return nil, errors.New("rate must be non-negative")
	}
	if rate != 0 && m.amount > math.MaxInt64/rate {
		return nil, ErrAmountOverflow
	}
	scaled := m.amount * rate
	return &Money{amount: (scaled + 50) / 100, currency: m.currency}, nil
}

// IsGreaterThan reports whether the amount is greater than the other amount.
func (m Money) IsGreaterThan(other Money) bool {
	return m.amount > other.amount
}

// IsGreaterThanOrEqual reports whether the amount is greater than or equal to
// the other amount.
func (m Money) IsGreaterThanOrEqual(other Money) bool {
	return m.amount >= other.amount
}

// Equals reports whether both amount and currency match.
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// String renders the amount in major units, e.g. "450.00 INR".
func (m Money) String() string {
	sign := ""
	amount := m.amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.currency)
}
