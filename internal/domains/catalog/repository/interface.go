package repository

import (
	"context"

	"github.com/google/uuid"

	catalogModel "repairhub-backend/internal/domains/catalog/model"
	discountModel "repairhub-backend/internal/domains/discount/model"
)

// ModelSource resolves a device model's brand and series.
// (nil, nil) means the model does not exist.
type ModelSource interface {
	GetModelRef(ctx context.Context, modelID uuid.UUID) (*discountModel.ModelRef, error)
}

// Repository is the catalog read side used by pricing and the storefront.
type Repository interface {
	ModelSource
	GetServicePrice(ctx context.Context, serviceID, modelID uuid.UUID) (*catalogModel.ServicePrice, error)
}
