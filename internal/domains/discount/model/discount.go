package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType decides how DiscountValue is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

// ScopeType is the part of the catalog a discount covers
type ScopeType string

const (
	ScopeService     ScopeType = "service"
	ScopeBrand       ScopeType = "brand"
	ScopeSeries      ScopeType = "series"
	ScopeModel       ScopeType = "model"
	ScopeAllServices ScopeType = "all_services"
	ScopeAllModels   ScopeType = "all_models"
)

func (s ScopeType) IsValid() bool {
	switch s {
	case ScopeService, ScopeBrand, ScopeSeries, ScopeModel, ScopeAllServices, ScopeAllModels:
		return true
	}
	return false
}

// Specificity ranks scopes from narrowest (highest) to widest.
// Unknown scopes rank below everything.
func (s ScopeType) Specificity() int {
	switch s {
	case ScopeModel:
		return 6
	case ScopeSeries:
		return 5
	case ScopeBrand:
		return 4
	case ScopeService:
		return 3
	case ScopeAllModels:
		return 2
	case ScopeAllServices:
		return 1
	}
	return 0
}

// Discount is a promotional pricing rule for repair services.
// Only the reference fields relevant to ScopeType are meaningful.
type Discount struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description *string   `json:"description,omitempty" db:"description"`

	// Pricing rule
	DiscountType  DiscountType    `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`

	// Scope
	ScopeType  ScopeType   `json:"scope_type" db:"scope_type"`
	ServiceID  *uuid.UUID  `json:"service_id,omitempty" db:"service_id"`
	ServiceIDs []uuid.UUID `json:"service_ids,omitempty"` // discount_services
	BrandID    *uuid.UUID  `json:"brand_id,omitempty" db:"brand_id"`
	SeriesID   *uuid.UUID  `json:"series_id,omitempty" db:"series_id"`
	ModelID    *uuid.UUID  `json:"model_id,omitempty" db:"model_id"`

	// Lifecycle guards; nil bounds are open
	IsActive       bool       `json:"is_active" db:"is_active"`
	StartsAt       *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	MaxUses        *int       `json:"max_uses,omitempty" db:"max_uses"`
	CurrentUses    int        `json:"current_uses" db:"current_uses"`
	MaxUsesPerUser *int       `json:"max_uses_per_user,omitempty" db:"max_uses_per_user"` // not enforced

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CoversService reports whether serviceID is in the discount's service association.
func (d *Discount) CoversService(serviceID uuid.UUID) bool {
	if d.ScopeType == ScopeAllServices {
		return true
	}
	if d.ServiceID != nil && *d.ServiceID == serviceID {
		return true
	}
	for _, id := range d.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// RemainingUses is nil when uses are uncapped.
func (d *Discount) RemainingUses() *int {
	if d.MaxUses == nil {
		return nil
	}
	remaining := *d.MaxUses - d.CurrentUses
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// ModelRef is the slice of a device model the pricing engine needs.
type ModelRef struct {
	ID       uuid.UUID  `json:"id"`
	BrandID  uuid.UUID  `json:"brand_id"`
	SeriesID *uuid.UUID `json:"series_id,omitempty"`
}

// DiscountCalculation is the result of applying one discount to one price.
type DiscountCalculation struct {
	OriginalPrice     decimal.Decimal `json:"original_price"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	FinalPrice        decimal.Decimal `json:"final_price"`
	RoundedFinalPrice decimal.Decimal `json:"rounded_final_price"`
	Discount          *Discount       `json:"discount"`
}

// PriceWithDiscount is what storefront callers receive.
type PriceWithDiscount struct {
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	HasDiscount     bool            `json:"has_discount"`
	Discount        *Discount       `json:"discount,omitempty"`
}

// Savings is OriginalPrice - DiscountedPrice, floored at zero.
// Rounding up to the 90 price point can make the difference negative.
func (p *PriceWithDiscount) Savings() decimal.Decimal {
	s := p.OriginalPrice.Sub(p.DiscountedPrice)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}
