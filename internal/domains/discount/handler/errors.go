package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/shared"
	"repairhub-backend/internal/shared/response"
	"repairhub-backend/pkg/logger"
)

// handleError maps service errors onto the response envelope.
// Anything that is not an AppError came from storage or the catalog and
// is reported as 503 so callers never mistake it for "no discount".
func handleError(c *gin.Context, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		switch {
		case appErr.Details != nil:
			response.ErrorWithDetails(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message, appErr.Details)
		case appErr.Err != nil && appErr.Code == model.ErrCodeValidationFailed:
			response.ErrorWithDetails(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message, validationDetails(appErr.Err))
		default:
			response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
		}
		return
	}

	logger.ErrorFields("Discount request failed", err, map[string]interface{}{
		"path":       c.FullPath(),
		"request_id": c.GetString(shared.ContextKeyRequestID),
	})
	unavailable := model.NewUnavailableError(err)
	response.ErrorResponse(c, unavailable.HTTPStatus, string(unavailable.Code), unavailable.Message)
}

// validationDetails keeps ozzo's per-field map when there is one.
func validationDetails(err error) interface{} {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return err.Error()
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, string(model.ErrCodeValidationFailed),
			"Invalid "+name, err.Error())
		return uuid.Nil, false
	}
	return id, true
}
