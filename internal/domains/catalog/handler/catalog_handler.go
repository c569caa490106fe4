package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"repairhub-backend/internal/domains/catalog/service"
	discountModel "repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/shared/response"
	"repairhub-backend/pkg/logger"
)

type CatalogHandler struct {
	service service.ServiceInterface
}

func NewCatalogHandler(svc service.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// GetServiceDetail returns a repair service for a device model with its
// storefront price.
// @Router /v1/services/{serviceId}/models/{modelId} [get]
func (h *CatalogHandler) GetServiceDetail(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		response.BadRequest(c, "Invalid service ID")
		return
	}
	modelID, err := uuid.Parse(c.Param("modelId"))
	if err != nil {
		response.BadRequest(c, "Invalid model ID")
		return
	}

	detail, err := h.service.GetServiceDetail(c.Request.Context(), serviceID, modelID)
	if err != nil {
		var appErr *discountModel.AppError
		if errors.As(err, &appErr) {
			response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
			return
		}

		logger.ErrorFields("Service detail failed", err, map[string]interface{}{
			"service_id": serviceID.String(),
			"model_id":   modelID.String(),
		})
		response.ServiceUnavailable(c, "Pricing is temporarily unavailable")
		return
	}

	response.Success(c, http.StatusOK, detail)
}
