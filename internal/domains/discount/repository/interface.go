package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"repairhub-backend/internal/domains/discount/model"
)

// DiscountRepository is the data access contract for discounts.
// now is always passed in so time-dependent filters follow the caller's clock.
type DiscountRepository interface {
	// Pricing reads
	FindActiveForService(ctx context.Context, serviceID uuid.UUID, now time.Time) ([]*model.Discount, error)

	// Admin / public reads
	FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error)
	FindActiveByCode(ctx context.Context, code string, now time.Time) (*model.Discount, error)
	List(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, int, error)
	ListForExport(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, error)

	// Writes
	Create(ctx context.Context, d *model.Discount) error
	Update(ctx context.Context, d *model.Discount) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Maintenance
	DeactivateStale(ctx context.Context, now time.Time) (int64, error)
}
