package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/domains/discount/service"
	"repairhub-backend/internal/shared/response"
)

// PublicHandler serves the storefront pricing endpoints.
type PublicHandler struct {
	pricing   service.PricingServiceInterface
	discounts service.AdminServiceInterface
}

func NewPublicHandler(pricing service.PricingServiceInterface, discounts service.AdminServiceInterface) *PublicHandler {
	return &PublicHandler{
		pricing:   pricing,
		discounts: discounts,
	}
}

// Quote prices a service for a device model.
// @Router /v1/pricing/quote [post]
func (h *PublicHandler) Quote(c *gin.Context) {
	var req model.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, validationDetails(err))
		return
	}

	price, err := h.pricing.GetPriceWithDiscount(c.Request.Context(), req.ServiceID, req.ModelID, req.OriginalPrice)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, &model.QuoteResponse{
		PriceWithDiscount: price,
		Savings:           price.Savings(),
	})
}

// GetByCode looks up a currently usable discount by its code.
// @Router /v1/discounts/code/{code} [get]
func (h *PublicHandler) GetByCode(c *gin.Context) {
	info, err := h.discounts.GetDiscountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, info)
}
