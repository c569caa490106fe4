package service

import "github.com/shopspring/decimal"

var (
	oneHundred = decimal.NewFromInt(100)
	ten        = decimal.NewFromInt(10)
	ninety     = decimal.NewFromInt(90)
)

// RoundToNearest90 moves a price to the nearest point ending in 90
// (90, 190, 290, ...) without ever going below the input.
//
// Business Logic Flow:
//  1. price <= 0 returns 0
//  2. candidate = round(price/100)*100 - 10, half rounds up
//  3. candidate < price adds another 100
//  4. positive prices never return less than 90
//
// Examples: 45 -> 90, 91 -> 190, 850 -> 890, 949 -> 990, 960 -> 990.
func RoundToNearest90(price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}

	candidate := price.Div(oneHundred).Round(0).Mul(oneHundred).Sub(ten)
	if candidate.LessThan(price) {
		candidate = candidate.Add(oneHundred)
	}

	return decimal.Max(candidate, ninety)
}
