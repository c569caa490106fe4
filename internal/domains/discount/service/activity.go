package service

import (
	"time"

	"repairhub-backend/internal/domains/discount/model"
)

// IsDiscountActive is the authoritative usability check.
// A discount is usable while it is switched on, has started, has not
// expired and has uses left. Missing bounds always pass.
func IsDiscountActive(d *model.Discount, now time.Time) bool {
	if d == nil || !d.IsActive {
		return false
	}

	if d.StartsAt != nil && d.StartsAt.After(now) {
		return false
	}

	// expires_at is exclusive
	if d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
		return false
	}

	if d.MaxUses != nil && d.CurrentUses >= *d.MaxUses {
		return false
	}

	return true
}
