package model

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDiscount() *Discount {
	serviceID := uuid.New()
	return &Discount{
		ID:            uuid.New(),
		Name:          "Screen replacement week",
		Code:          "SCREEN-10",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		ScopeType:     ScopeService,
		ServiceIDs:    []uuid.UUID{serviceID},
		IsActive:      true,
	}
}

func TestDiscount_Validate(t *testing.T) {
	nilID := uuid.Nil
	brandID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name    string
		mutate  func(d *Discount)
		wantErr bool
	}{
		{"valid", func(d *Discount) {}, false},
		{"short name", func(d *Discount) { d.Name = "ab" }, true},
		{"lowercase code", func(d *Discount) { d.Code = "screen-10" }, true},
		{"code with spaces", func(d *Discount) { d.Code = "SCREEN 10" }, true},
		{"unknown type", func(d *Discount) { d.DiscountType = "bogo" }, true},
		{"zero value", func(d *Discount) { d.DiscountValue = decimal.Zero }, true},
		{"negative value", func(d *Discount) { d.DiscountValue = decimal.NewFromInt(-5) }, true},
		{"percentage of 100", func(d *Discount) { d.DiscountValue = decimal.NewFromInt(100) }, false},
		{"percentage over 100", func(d *Discount) { d.DiscountValue = decimal.NewFromInt(101) }, true},
		{"large fixed amount", func(d *Discount) {
			d.DiscountType = DiscountTypeFixed
			d.DiscountValue = decimal.NewFromInt(50000)
		}, false},
		{"unknown scope", func(d *Discount) { d.ScopeType = "region" }, true},
		{"brand scope without brand", func(d *Discount) { d.ScopeType = ScopeBrand }, true},
		{"brand scope with brand", func(d *Discount) {
			d.ScopeType = ScopeBrand
			d.BrandID = &brandID
		}, false},
		{"nil uuid brand", func(d *Discount) {
			d.ScopeType = ScopeBrand
			d.BrandID = &nilID
		}, true},
		{"series scope without series", func(d *Discount) { d.ScopeType = ScopeSeries }, true},
		{"model scope without model", func(d *Discount) { d.ScopeType = ScopeModel }, true},
		{"no service association", func(d *Discount) { d.ServiceIDs = nil }, true},
		{"legacy single service", func(d *Discount) {
			d.ServiceIDs = nil
			id := uuid.New()
			d.ServiceID = &id
		}, false},
		{"all_services without association", func(d *Discount) {
			d.ScopeType = ScopeAllServices
			d.ServiceIDs = nil
		}, false},
		{"nil uuid in association", func(d *Discount) { d.ServiceIDs = []uuid.UUID{uuid.Nil} }, true},
		{"window inverted", func(d *Discount) {
			d.StartsAt = &start
			d.ExpiresAt = &before
		}, true},
		{"window empty", func(d *Discount) {
			d.StartsAt = &start
			d.ExpiresAt = &start
		}, true},
		{"open start", func(d *Discount) { d.ExpiresAt = &start }, false},
		{"zero max uses", func(d *Discount) {
			n := 0
			d.MaxUses = &n
		}, true},
		{"negative current uses", func(d *Discount) { d.CurrentUses = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDiscount()
			tt.mutate(d)

			err := d.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiscount_Validate_UnknownEnums(t *testing.T) {
	d := validDiscount()
	d.DiscountType = "bogo"
	d.ScopeType = "region"

	err := d.Validate()
	require.Error(t, err)

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.ErrorIs(t, errs["discount_type"], ErrInvalidDiscountType)
	assert.ErrorIs(t, errs["scope_type"], ErrInvalidScopeType)

	d.DiscountType = ""
	errs = d.Validate().(validation.Errors)
	assert.NotErrorIs(t, errs["discount_type"], ErrInvalidDiscountType)
}
