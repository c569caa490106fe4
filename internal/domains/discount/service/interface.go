package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"repairhub-backend/internal/domains/discount/model"
)

// DiscountFinder is the storage pre-filter used by the pricing engine.
// Implementations return discounts that are switched on, not expired at
// now and associated with serviceID (or scoped to all services),
// ordered by created_at then id.
type DiscountFinder interface {
	FindActiveForService(ctx context.Context, serviceID uuid.UUID, now time.Time) ([]*model.Discount, error)
}

// ModelLookup resolves a device model's brand and series.
// A missing model is (nil, nil).
type ModelLookup interface {
	GetModelRef(ctx context.Context, modelID uuid.UUID) (*model.ModelRef, error)
}

// PricingServiceInterface is the storefront-facing pricing contract.
type PricingServiceInterface interface {
	GetApplicableDiscount(ctx context.Context, serviceID, modelID uuid.UUID) (*model.Discount, error)
	GetPriceWithDiscount(ctx context.Context, serviceID, modelID uuid.UUID, originalPrice decimal.Decimal) (*model.PriceWithDiscount, error)
}

// AdminServiceInterface backs the back-office discount screens.
type AdminServiceInterface interface {
	CreateDiscount(ctx context.Context, req *model.CreateDiscountRequest) (*model.DiscountResponse, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (*model.DiscountResponse, error)
	GetDiscountByCode(ctx context.Context, code string) (*model.DiscountInfo, error)
	ListDiscounts(ctx context.Context, filter *model.ListDiscountsFilter) ([]*model.DiscountResponse, int, error)
	UpdateDiscount(ctx context.Context, id uuid.UUID, req *model.UpdateDiscountRequest) (*model.DiscountResponse, error)
	UpdateDiscountStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
	DeactivateStaleDiscounts(ctx context.Context) (int64, error)
	ExportDiscounts(ctx context.Context, filter *model.ListDiscountsFilter, w io.Writer) (int, error)
}
