package service

import (
	"github.com/shopspring/decimal"

	"repairhub-backend/internal/domains/discount/model"
)

// CalculateDiscount applies one discount to one price.
// The caller has already checked the discount is active and in scope.
//
// Business Logic:
//  1. percentage: amount = price * value / 100
//  2. fixed: amount = value
//  3. final = max(0, price - amount)
//  4. rounded = RoundToNearest90(final)
//
// Percentages above 100 are not rejected here; they floor at zero.
func CalculateDiscount(price decimal.Decimal, d *model.Discount) *model.DiscountCalculation {
	var amount decimal.Decimal

	switch d.DiscountType {
	case model.DiscountTypePercentage:
		amount = price.Mul(d.DiscountValue).Div(oneHundred)
	case model.DiscountTypeFixed:
		amount = d.DiscountValue
	default:
		amount = decimal.Zero
	}

	final := price.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return &model.DiscountCalculation{
		OriginalPrice:     price,
		DiscountAmount:    amount,
		FinalPrice:        final,
		RoundedFinalPrice: RoundToNearest90(final),
		Discount:          d,
	}
}
