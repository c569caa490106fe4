package service

import (
	"github.com/google/uuid"

	"repairhub-backend/internal/domains/discount/model"
)

// MatchesScope decides whether a discount's catalog scope covers the model.
// service and all_services scopes are not narrowed by model; their
// coverage is the service association checked by the candidate query.
func MatchesScope(d *model.Discount, m *model.ModelRef) bool {
	if d == nil || m == nil {
		return false
	}

	switch d.ScopeType {
	case model.ScopeAllModels, model.ScopeService, model.ScopeAllServices:
		return true
	case model.ScopeBrand:
		return equalID(d.BrandID, &m.BrandID)
	case model.ScopeSeries:
		return equalID(d.SeriesID, m.SeriesID)
	case model.ScopeModel:
		return equalID(d.ModelID, &m.ID)
	default:
		return false
	}
}

// equalID never matches when either side is missing.
func equalID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
