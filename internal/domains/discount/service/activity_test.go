package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"repairhub-backend/internal/domains/discount/model"
)

func TestIsDiscountActive(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name string
		d    *model.Discount
		want bool
	}{
		{name: "nil discount", d: nil, want: false},
		{name: "switched off", d: &model.Discount{IsActive: false}, want: false},
		{name: "no bounds", d: &model.Discount{IsActive: true}, want: true},
		{name: "expires_at nil", d: &model.Discount{IsActive: true, StartsAt: &past}, want: true},
		{name: "expired", d: &model.Discount{IsActive: true, ExpiresAt: &past}, want: false},
		{name: "expires exactly now", d: &model.Discount{IsActive: true, ExpiresAt: &now}, want: false},
		{name: "expires later", d: &model.Discount{IsActive: true, ExpiresAt: &future}, want: true},
		{name: "not started", d: &model.Discount{IsActive: true, StartsAt: &future}, want: false},
		{name: "starts exactly now", d: &model.Discount{IsActive: true, StartsAt: &now}, want: true},
		{name: "uses left", d: &model.Discount{IsActive: true, MaxUses: intPtr(5), CurrentUses: 4}, want: true},
		{name: "uses exhausted", d: &model.Discount{IsActive: true, MaxUses: intPtr(5), CurrentUses: 5}, want: false},
		{name: "uses over cap", d: &model.Discount{IsActive: true, MaxUses: intPtr(5), CurrentUses: 7}, want: false},
		{name: "per-user cap ignored", d: &model.Discount{IsActive: true, MaxUsesPerUser: intPtr(0)}, want: true},
		{
			name: "inside window with uses left",
			d:    &model.Discount{IsActive: true, StartsAt: &past, ExpiresAt: &future, MaxUses: intPtr(1)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDiscountActive(tt.d, now))
		})
	}
}
