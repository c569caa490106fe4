package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"repairhub-backend/internal/domains/discount/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: got %s want %s", field, got, want)
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name        string
		price       string
		kind        model.DiscountType
		value       string
		wantAmount  string
		wantFinal   string
		wantRounded string
	}{
		{"fixed 500 off 2000", "2000", model.DiscountTypeFixed, "500", "500", "1500", "1590"},
		{"15 percent off 1000", "1000", model.DiscountTypePercentage, "15", "150", "850", "890"},
		{"20 percent off 1200", "1200", model.DiscountTypePercentage, "20", "240", "960", "990"},
		{"fixed larger than price", "1000", model.DiscountTypeFixed, "5000", "5000", "0", "0"},
		{"percentage over 100 floors at zero", "1000", model.DiscountTypePercentage, "150", "1500", "0", "0"},
		{"fractional percentage", "999", model.DiscountTypePercentage, "15", "149.85", "849.15", "890"},
		{"zero price", "0", model.DiscountTypePercentage, "10", "0", "0", "0"},
		{"unknown type discounts nothing", "1000", "bogus", "10", "0", "1000", "1090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &model.Discount{DiscountType: tt.kind, DiscountValue: dec(tt.value)}
			calc := CalculateDiscount(dec(tt.price), d)

			assertDecimal(t, tt.price, calc.OriginalPrice, "original")
			assertDecimal(t, tt.wantAmount, calc.DiscountAmount, "amount")
			assertDecimal(t, tt.wantFinal, calc.FinalPrice, "final")
			assertDecimal(t, tt.wantRounded, calc.RoundedFinalPrice, "rounded")
			assert.Same(t, d, calc.Discount)
			assert.False(t, calc.FinalPrice.IsNegative())
		})
	}
}
