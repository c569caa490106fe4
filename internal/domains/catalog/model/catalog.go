package model

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	discountModel "repairhub-backend/internal/domains/discount/model"
)

// ServicePrice is the catalog list price of one repair service on one device model.
type ServicePrice struct {
	ServiceID   uuid.UUID       `json:"service_id" db:"service_id"`
	ServiceName string          `json:"service_name" db:"service_name"`
	ModelID     uuid.UUID       `json:"model_id" db:"model_id"`
	ModelName   string          `json:"model_name" db:"model_name"`
	BrandName   string          `json:"brand_name" db:"brand_name"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// ServiceDetailResponse is the storefront service page for a model.
type ServiceDetailResponse struct {
	ServiceID       uuid.UUID                   `json:"service_id"`
	ServiceName     string                      `json:"service_name"`
	ModelID         uuid.UUID                   `json:"model_id"`
	ModelName       string                      `json:"model_name"`
	BrandName       string                      `json:"brand_name"`
	OriginalPrice   decimal.Decimal             `json:"original_price"`
	DiscountedPrice decimal.Decimal             `json:"discounted_price"`
	Savings         decimal.Decimal             `json:"savings"`
	HasDiscount     bool                        `json:"has_discount"`
	Discount        *discountModel.DiscountInfo `json:"discount,omitempty"`
}

const ErrCodeServicePriceNotFound discountModel.ErrorCode = "CATALOG_PRICE_NOT_FOUND"

// ErrServicePriceNotFound - the service is not offered for the model.
var ErrServicePriceNotFound = &discountModel.AppError{
	Code:       ErrCodeServicePriceNotFound,
	Message:    "Service is not available for this model",
	HTTPStatus: http.StatusNotFound,
}
