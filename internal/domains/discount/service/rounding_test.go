package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundToNearest90(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"-50", "0"},
		{"0.01", "90"},
		{"45", "90"},
		{"90", "90"},
		{"91", "190"},
		{"149.99", "190"},
		{"150", "190"},
		{"849.15", "890"},
		{"850", "890"},
		{"890", "890"},
		{"891", "990"},
		{"949", "990"},
		{"950", "990"},
		{"960", "990"},
		{"1000", "1090"},
		{"1500", "1590"},
		{"1590", "1590"},
		{"12345.67", "12390"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundToNearest90(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestRoundToNearest90_Properties(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	ninety := decimal.NewFromInt(90)

	// sweep 0.25 .. 5000 in quarter steps
	for cents := int64(25); cents <= 500000; cents += 25 {
		p := decimal.New(cents, -2)
		got := RoundToNearest90(p)

		if !assert.True(t, got.GreaterThanOrEqual(p), "undershoot for %s: %s", p, got) {
			return
		}
		if !assert.True(t, got.Mod(hundred).Equal(ninety), "%s does not end in 90 (input %s)", got, p) {
			return
		}
		if !assert.True(t, got.Sub(p).LessThan(hundred), "overshoot by 100+ for %s: %s", p, got) {
			return
		}
	}
}
