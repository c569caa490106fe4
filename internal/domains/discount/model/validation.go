package model

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

var hundred = decimal.NewFromInt(100)

// Validate checks a discount about to be persisted. Both create and
// update funnel through here after the request has been merged.
func (d *Discount) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name,
			validation.Required.Error("name is required"),
			validation.Length(3, 200),
		),
		validation.Field(&d.Code,
			validation.Required.Error("code is required"),
			validation.Length(3, 50),
			validation.Match(codePattern).Error("code may only contain A-Z, 0-9, '-' and '_'"),
		),
		validation.Field(&d.Description,
			validation.When(d.Description != nil, validation.Length(0, 1000)),
		),
		validation.Field(&d.DiscountType, validation.Required, validation.By(knownDiscountType)),
		validation.Field(&d.DiscountValue, validation.By(d.validateValue)),
		validation.Field(&d.ScopeType, validation.Required, validation.By(knownScopeType)),
		validation.Field(&d.BrandID,
			validation.When(d.ScopeType == ScopeBrand, validation.Required.Error("brand_id is required for brand scope")),
			validation.By(notNilUUID),
		),
		validation.Field(&d.SeriesID,
			validation.When(d.ScopeType == ScopeSeries, validation.Required.Error("series_id is required for series scope")),
			validation.By(notNilUUID),
		),
		validation.Field(&d.ModelID,
			validation.When(d.ScopeType == ScopeModel, validation.Required.Error("model_id is required for model scope")),
			validation.By(notNilUUID),
		),
		validation.Field(&d.ServiceID, validation.By(notNilUUID)),
		validation.Field(&d.ServiceIDs, validation.By(d.validateServiceAssociation)),
		validation.Field(&d.ExpiresAt, validation.By(d.validateWindow)),
		validation.Field(&d.MaxUses, validation.By(positiveLimit)),
		validation.Field(&d.MaxUsesPerUser, validation.By(positiveLimit)),
		validation.Field(&d.CurrentUses, validation.Min(0)),
	)
}

func (d *Discount) validateValue(interface{}) error {
	if !d.DiscountValue.IsPositive() {
		return errors.New("discount_value must be greater than 0")
	}
	if d.DiscountType == DiscountTypePercentage && d.DiscountValue.GreaterThan(hundred) {
		return errors.New("percentage discount cannot exceed 100")
	}
	return nil
}

// Every scope except all_services is reached through a service association.
func (d *Discount) validateServiceAssociation(interface{}) error {
	for _, id := range d.ServiceIDs {
		if id == uuid.Nil {
			return errors.New("service_ids must not contain the nil UUID")
		}
	}
	if d.ScopeType == ScopeAllServices {
		return nil
	}
	if d.ServiceID == nil && len(d.ServiceIDs) == 0 {
		return errors.New("at least one service is required unless scope_type is all_services")
	}
	return nil
}

func (d *Discount) validateWindow(interface{}) error {
	if d.StartsAt == nil || d.ExpiresAt == nil {
		return nil
	}
	if !d.ExpiresAt.After(*d.StartsAt) {
		return errors.New("expires_at must be after starts_at")
	}
	return nil
}

// Blank values are left to validation.Required.
func knownDiscountType(value interface{}) error {
	t, _ := value.(DiscountType)
	if t == "" || t.IsValid() {
		return nil
	}
	return ErrInvalidDiscountType
}

func knownScopeType(value interface{}) error {
	s, _ := value.(ScopeType)
	if s == "" || s.IsValid() {
		return nil
	}
	return ErrInvalidScopeType
}

// positiveLimit rejects 0, which validation.Min treats as empty.
func positiveLimit(value interface{}) error {
	n, _ := value.(*int)
	if n != nil && *n < 1 {
		return errors.New("must be at least 1")
	}
	return nil
}

func notNilUUID(value interface{}) error {
	id, _ := value.(*uuid.UUID)
	if id != nil && *id == uuid.Nil {
		return errors.New("must not be the nil UUID")
	}
	return nil
}
