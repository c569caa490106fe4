package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -------------------------------------------------------------------
// PUBLIC REQUESTS
// -------------------------------------------------------------------

// QuoteRequest asks for the storefront price of a service on a model.
type QuoteRequest struct {
	ServiceID     uuid.UUID       `json:"service_id"`
	ModelID       uuid.UUID       `json:"model_id"`
	OriginalPrice decimal.Decimal `json:"original_price"`
}

// Validate checks identifiers only; price sanity belongs to the pricing service.
func (r QuoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ServiceID, validation.By(requiredUUID)),
		validation.Field(&r.ModelID, validation.By(requiredUUID)),
	)
}

// -------------------------------------------------------------------
// ADMIN REQUESTS
// -------------------------------------------------------------------

// CreateDiscountRequest - payload for POST /admin/discounts
type CreateDiscountRequest struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	ScopeType      string          `json:"scope_type"`
	ServiceID      *uuid.UUID      `json:"service_id"`
	ServiceIDs     []uuid.UUID     `json:"service_ids"`
	BrandID        *uuid.UUID      `json:"brand_id"`
	SeriesID       *uuid.UUID      `json:"series_id"`
	ModelID        *uuid.UUID      `json:"model_id"`
	StartsAt       *string         `json:"starts_at"` // RFC3339
	ExpiresAt      *string         `json:"expires_at"`
	MaxUses        *int            `json:"max_uses"`
	MaxUsesPerUser *int            `json:"max_uses_per_user"`
	IsActive       *bool           `json:"is_active"` // defaults to true
}

// Validate covers wire-format concerns. Business rules are in Discount.Validate.
func (r CreateDiscountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required.Error("code is required")),
		validation.Field(&r.Name, validation.Required.Error("name is required")),
		validation.Field(&r.DiscountType, validation.Required.Error("discount_type is required")),
		validation.Field(&r.ScopeType, validation.Required.Error("scope_type is required")),
		validation.Field(&r.StartsAt, validation.Date(time.RFC3339).Error("starts_at must be RFC3339")),
		validation.Field(&r.ExpiresAt, validation.Date(time.RFC3339).Error("expires_at must be RFC3339")),
	)
}

// Normalize trims strings and upper-cases the code.
func (r *CreateDiscountRequest) Normalize() {
	r.Code = NormalizeCode(r.Code)
	r.Name = strings.TrimSpace(r.Name)
	r.DiscountType = strings.ToLower(strings.TrimSpace(r.DiscountType))
	r.ScopeType = strings.ToLower(strings.TrimSpace(r.ScopeType))
}

// ToDiscount builds the entity; call after Validate.
func (r *CreateDiscountRequest) ToDiscount() (*Discount, error) {
	startsAt, err := parseOptionalTime(r.StartsAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseOptionalTime(r.ExpiresAt)
	if err != nil {
		return nil, err
	}

	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return &Discount{
		ID:             uuid.New(),
		Name:           r.Name,
		Code:           r.Code,
		Description:    r.Description,
		DiscountType:   DiscountType(r.DiscountType),
		DiscountValue:  r.DiscountValue,
		ScopeType:      ScopeType(r.ScopeType),
		ServiceID:      r.ServiceID,
		ServiceIDs:     dedupeUUIDs(r.ServiceIDs),
		BrandID:        r.BrandID,
		SeriesID:       r.SeriesID,
		ModelID:        r.ModelID,
		IsActive:       isActive,
		StartsAt:       startsAt,
		ExpiresAt:      expiresAt,
		MaxUses:        r.MaxUses,
		MaxUsesPerUser: r.MaxUsesPerUser,
	}, nil
}

// UpdateDiscountRequest - partial update; nil fields are left unchanged.
// An empty starts_at/expires_at clears the bound. service_ids, when
// present, replaces the whole association. Clear lists nullable fields
// to reset to null, e.g. {"clear": ["max_uses", "brand_id"]}.
type UpdateDiscountRequest struct {
	Code           *string          `json:"code"`
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	DiscountType   *string          `json:"discount_type"`
	DiscountValue  *decimal.Decimal `json:"discount_value"`
	ScopeType      *string          `json:"scope_type"`
	ServiceID      *uuid.UUID       `json:"service_id"`
	ServiceIDs     *[]uuid.UUID     `json:"service_ids"`
	BrandID        *uuid.UUID       `json:"brand_id"`
	SeriesID       *uuid.UUID       `json:"series_id"`
	ModelID        *uuid.UUID       `json:"model_id"`
	StartsAt       *string          `json:"starts_at"`
	ExpiresAt      *string          `json:"expires_at"`
	MaxUses        *int             `json:"max_uses"`
	MaxUsesPerUser *int             `json:"max_uses_per_user"`
	IsActive       *bool            `json:"is_active"`
	Clear          []string         `json:"clear"`
}

// Nullable fields accepted in UpdateDiscountRequest.Clear
const (
	FieldDescription    = "description"
	FieldServiceID      = "service_id"
	FieldBrandID        = "brand_id"
	FieldSeriesID       = "series_id"
	FieldModelID        = "model_id"
	FieldStartsAt       = "starts_at"
	FieldExpiresAt      = "expires_at"
	FieldMaxUses        = "max_uses"
	FieldMaxUsesPerUser = "max_uses_per_user"
)

func (r UpdateDiscountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StartsAt, validation.Date(time.RFC3339).Error("starts_at must be RFC3339")),
		validation.Field(&r.ExpiresAt, validation.Date(time.RFC3339).Error("expires_at must be RFC3339")),
		validation.Field(&r.Clear,
			validation.Each(validation.In(
				FieldDescription, FieldServiceID, FieldBrandID, FieldSeriesID, FieldModelID,
				FieldStartsAt, FieldExpiresAt, FieldMaxUses, FieldMaxUsesPerUser,
			).Error("is not a clearable field")),
			validation.By(r.clearConflicts),
		),
	)
}

// clearConflicts rejects a field that is both supplied and cleared.
func (r UpdateDiscountRequest) clearConflicts(interface{}) error {
	supplied := map[string]bool{
		FieldDescription:    r.Description != nil,
		FieldServiceID:      r.ServiceID != nil,
		FieldBrandID:        r.BrandID != nil,
		FieldSeriesID:       r.SeriesID != nil,
		FieldModelID:        r.ModelID != nil,
		FieldStartsAt:       r.StartsAt != nil,
		FieldExpiresAt:      r.ExpiresAt != nil,
		FieldMaxUses:        r.MaxUses != nil,
		FieldMaxUsesPerUser: r.MaxUsesPerUser != nil,
	}
	for _, field := range r.Clear {
		if supplied[field] {
			return fmt.Errorf("%s cannot be set and cleared in the same request", field)
		}
	}
	return nil
}

// HasChanges reports whether at least one field was supplied.
func (r UpdateDiscountRequest) HasChanges() bool {
	return r.Code != nil || r.Name != nil || r.Description != nil ||
		r.DiscountType != nil || r.DiscountValue != nil || r.ScopeType != nil ||
		r.ServiceID != nil || r.ServiceIDs != nil || r.BrandID != nil ||
		r.SeriesID != nil || r.ModelID != nil || r.StartsAt != nil ||
		r.ExpiresAt != nil || r.MaxUses != nil || r.MaxUsesPerUser != nil ||
		r.IsActive != nil || len(r.Clear) > 0
}

// ApplyTo merges the supplied fields into d.
func (r *UpdateDiscountRequest) ApplyTo(d *Discount) error {
	if r.Code != nil {
		d.Code = NormalizeCode(*r.Code)
	}
	if r.Name != nil {
		d.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		d.Description = r.Description
	}
	if r.DiscountType != nil {
		d.DiscountType = DiscountType(strings.ToLower(strings.TrimSpace(*r.DiscountType)))
	}
	if r.DiscountValue != nil {
		d.DiscountValue = *r.DiscountValue
	}
	if r.ScopeType != nil {
		d.ScopeType = ScopeType(strings.ToLower(strings.TrimSpace(*r.ScopeType)))
	}
	if r.ServiceID != nil {
		d.ServiceID = r.ServiceID
	}
	if r.ServiceIDs != nil {
		d.ServiceIDs = dedupeUUIDs(*r.ServiceIDs)
	}
	if r.BrandID != nil {
		d.BrandID = r.BrandID
	}
	if r.SeriesID != nil {
		d.SeriesID = r.SeriesID
	}
	if r.ModelID != nil {
		d.ModelID = r.ModelID
	}
	if r.StartsAt != nil {
		t, err := parseOptionalTime(r.StartsAt)
		if err != nil {
			return err
		}
		d.StartsAt = t
	}
	if r.ExpiresAt != nil {
		t, err := parseOptionalTime(r.ExpiresAt)
		if err != nil {
			return err
		}
		d.ExpiresAt = t
	}
	if r.MaxUses != nil {
		d.MaxUses = r.MaxUses
	}
	if r.MaxUsesPerUser != nil {
		d.MaxUsesPerUser = r.MaxUsesPerUser
	}
	if r.IsActive != nil {
		d.IsActive = *r.IsActive
	}

	for _, field := range r.Clear {
		switch field {
		case FieldDescription:
			d.Description = nil
		case FieldServiceID:
			d.ServiceID = nil
		case FieldBrandID:
			d.BrandID = nil
		case FieldSeriesID:
			d.SeriesID = nil
		case FieldModelID:
			d.ModelID = nil
		case FieldStartsAt:
			d.StartsAt = nil
		case FieldExpiresAt:
			d.ExpiresAt = nil
		case FieldMaxUses:
			d.MaxUses = nil
		case FieldMaxUsesPerUser:
			d.MaxUsesPerUser = nil
		}
	}
	return nil
}

// UpdateStatusRequest - PATCH /admin/discounts/:id/status
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsActive, validation.NotNil.Error("is_active is required")),
	)
}

// -------------------------------------------------------------------
// LISTING
// -------------------------------------------------------------------

// List status filters
const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusUpcoming  = "upcoming"
	StatusExpired   = "expired"
	StatusExhausted = "exhausted"
)

// ListDiscountsFilter - query string of GET /admin/discounts
type ListDiscountsFilter struct {
	Status    string `form:"status"`
	ScopeType string `form:"scope_type"`
	Search    string `form:"search"` // code or name
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

func (f ListDiscountsFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Status,
			validation.In(StatusAll, StatusActive, StatusInactive, StatusUpcoming, StatusExpired, StatusExhausted),
		),
		validation.Field(&f.ScopeType,
			validation.In(string(ScopeService), string(ScopeBrand), string(ScopeSeries),
				string(ScopeModel), string(ScopeAllServices), string(ScopeAllModels)),
		),
		validation.Field(&f.Search, validation.Length(0, 100)),
	)
}

// Normalize applies paging defaults.
func (f *ListDiscountsFilter) Normalize() {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = StatusAll
	}
	f.ScopeType = strings.ToLower(strings.TrimSpace(f.ScopeType))
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

func (f ListDiscountsFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// -------------------------------------------------------------------
// RESPONSES
// -------------------------------------------------------------------

// DiscountResponse is the admin view of a discount.
type DiscountResponse struct {
	*Discount
	RemainingUses     *int `json:"remaining_uses,omitempty"`
	IsCurrentlyActive bool `json:"is_currently_active"`
}

// DiscountInfo is the public view returned by code lookup.
type DiscountInfo struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ScopeType     ScopeType       `json:"scope_type"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

func (d *Discount) ToInfo() *DiscountInfo {
	return &DiscountInfo{
		Code:          d.Code,
		Name:          d.Name,
		Description:   d.Description,
		DiscountType:  d.DiscountType,
		DiscountValue: d.DiscountValue,
		ScopeType:     d.ScopeType,
		ExpiresAt:     d.ExpiresAt,
	}
}

// QuoteResponse wraps PriceWithDiscount with the savings figure.
type QuoteResponse struct {
	*PriceWithDiscount
	Savings decimal.Decimal `json:"savings"`
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

// NormalizeCode makes codes case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func dedupeUUIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func requiredUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return errors.New("is required")
	}
	return nil
}
