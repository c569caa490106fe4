package service

import (
	"context"

	"github.com/google/uuid"

	catalogModel "repairhub-backend/internal/domains/catalog/model"
	discountService "repairhub-backend/internal/domains/discount/service"
)

// PriceReader loads catalog list prices.
type PriceReader interface {
	GetServicePrice(ctx context.Context, serviceID, modelID uuid.UUID) (*catalogModel.ServicePrice, error)
}

type ServiceInterface interface {
	GetServiceDetail(ctx context.Context, serviceID, modelID uuid.UUID) (*catalogModel.ServiceDetailResponse, error)
}

type CatalogService struct {
	prices  PriceReader
	pricing discountService.PricingServiceInterface
}

func NewCatalogService(prices PriceReader, pricing discountService.PricingServiceInterface) ServiceInterface {
	return &CatalogService{prices: prices, pricing: pricing}
}

// GetServiceDetail returns the service page for a model with the
// storefront price.
//
// Business Logic Flow:
//  1. Load the catalog list price for (service, model)
//  2. Resolve the discounted price through the pricing engine
//  3. Pricing failures are returned as errors, never as the list price
func (s *CatalogService) GetServiceDetail(ctx context.Context, serviceID, modelID uuid.UUID) (*catalogModel.ServiceDetailResponse, error) {
	sp, err := s.prices.GetServicePrice(ctx, serviceID, modelID)
	if err != nil {
		return nil, err
	}

	price, err := s.pricing.GetPriceWithDiscount(ctx, serviceID, modelID, sp.Price)
	if err != nil {
		return nil, err
	}

	detail := &catalogModel.ServiceDetailResponse{
		ServiceID:       sp.ServiceID,
		ServiceName:     sp.ServiceName,
		ModelID:         sp.ModelID,
		ModelName:       sp.ModelName,
		BrandName:       sp.BrandName,
		OriginalPrice:   price.OriginalPrice,
		DiscountedPrice: price.DiscountedPrice,
		Savings:         price.Savings(),
		HasDiscount:     price.HasDiscount,
	}
	if price.Discount != nil {
		detail.Discount = price.Discount.ToInfo()
	}
	return detail, nil
}
