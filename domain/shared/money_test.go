package shared

import (
	"errors"
	"math"
	"testing"
)

func TestMoneyAdd(t *testing.T) {
	a := NewMoney(45000, "INR")
	b := NewMoney(4000, "INR")

	sum, err := a.Add(*b)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if sum.Amount() != 49000 {
		t.Errorf("Add = %d, want 49000", sum.Amount())
	}

	if _, err := a.Add(*NewMoney(100, "USD")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Add with mixed currencies = %v, want ErrCurrencyMismatch", err)
	}
}

func TestMoneyAddOverflow(t *testing.T) {
	a := NewMoney(math.MaxInt64, "INR")
	if _, err := a.Add(*NewMoney(1, "INR")); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("Add overflow = %v, want ErrAmountOverflow", err)
	}
}

func TestMoneyMultiply(t *testing.T) {
	price := NewMoney(29900, "INR")

	total, err := price.Multiply(3)
	if err != nil {
		t.Fatalf("Multiply returned error: %v", err)
	}
	if total.Amount() != 89700 {
		t.Errorf("Multiply = %d, want 89700", total.Amount())
	}

	if _, err := price.Multiply(-1); err == nil {
		t.Error("Multiply with negative factor should fail")
	}
	if _, err := NewMoney(math.MaxInt64, "INR").Multiply(2); !errors.Is(err, ErrAmountOverflow) {
		t.Error("Multiply overflow should return ErrAmountOverflow")
	}
}

func TestMoneyPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		rate   int64
		want   int64
	}{
		{"18 percent of 450.00", 45000, 18, 8100},
		{"18 percent of 600.00", 60000, 18, 10800},
		{"rounds half up", 5, 18, 1},       // 0.9 minor units -> 1
		{"rounds down below half", 2, 18, 0}, // 0.36 minor units -> 0
		{"zero rate", 45000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMoney(tt.amount, "INR").Percent(tt.rate)
			if err != nil {
				t.Fatalf("Percent returned error: %v", err)
			}
			if got.Amount() != tt.want {
				t.Errorf("Percent(%d) of %d = %d, want %d", tt.rate, tt.amount, got.Amount(), tt.want)
			}
		})
	}
}

func TestMoneyFromFloat(t *testing.T) {
	m := NewMoneyFromFloat(450.00, "INR")
	if m.Amount() != 45000 {
		t.Errorf("NewMoneyFromFloat(450.00) = %d, want 45000", m.Amount())
	}
	m = NewMoneyFromFloat(299.99, "INR")
	if m.Amount() != 29999 {
		t.Errorf("NewMoneyFromFloat(299.99) = %d, want 29999", m.Amount())
	}
}

func TestMoneyComparisons(t *testing.T) {
	threshold := NewMoney(50000, "INR")
	if !NewMoney(50000, "INR").IsGreaterThanOrEqual(*threshold) {
		t.Error("equal amounts should satisfy IsGreaterThanOrEqual")
	}
	if NewMoney(49999, "INR").IsGreaterThanOrEqual(*threshold) {
		t.Error("smaller amount should not satisfy IsGreaterThanOrEqual")
	}
	if !NewMoney(50001, "INR").IsGreaterThan(*threshold) {
		t.Error("larger amount should satisfy IsGreaterThan")
	}
}

func TestMoneyString(t *testing.T) {
	if got := NewMoney(57100, "INR").String(); got != "571.00 INR" {
		t.Errorf("String() = %q, want %q", got, "571.00 INR")
	}
	if got := NewMoney(-105, "INR").String(); got != "-1.05 INR" {
		t.Errorf("String() = %q, want %q", got, "-1.05 INR")
	}
}
