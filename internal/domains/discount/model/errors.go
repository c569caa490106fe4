package model

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidDiscountType = errors.New("discount_type must be 'percentage' or 'fixed'")
	ErrInvalidScopeType    = errors.New("unknown scope_type")
)

type ErrorCode string

const (
	ErrCodeDiscountNotFound ErrorCode = "DISCOUNT_NOT_FOUND"         // 404
	ErrCodeDuplicateCode    ErrorCode = "VAL_DUPLICATE_CODE"         // 409
	ErrCodeValidationFailed ErrorCode = "VAL_INVALID_INPUT"          // 400
	ErrCodeInvalidPrice     ErrorCode = "VAL_INVALID_PRICE"          // 400
	ErrCodeMaxUsesTooLow    ErrorCode = "BIZ_MAX_USES_BELOW_CURRENT" // 400
	ErrCodeReportNotReady   ErrorCode = "REPORT_NOT_READY"           // 404

	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE" // 503
)

// AppError carries the HTTP mapping with the error.
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy carrying details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Predefined errors
var (
	ErrDiscountNotFound = &AppError{
		Code:       ErrCodeDiscountNotFound,
		Message:    "Discount not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrDuplicateCode = &AppError{
		Code:       ErrCodeDuplicateCode,
		Message:    "A discount with this code already exists",
		HTTPStatus: http.StatusConflict,
	}

	ErrInvalidPrice = &AppError{
		Code:       ErrCodeInvalidPrice,
		Message:    "Price must not be negative",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrReportNotReady = &AppError{
		Code:       ErrCodeReportNotReady,
		Message:    "Report has not been generated yet",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMaxUsesBelowCurrent = &AppError{
		Code:       ErrCodeMaxUsesTooLow,
		Message:    "max_uses cannot be lower than current_uses",
		HTTPStatus: http.StatusBadRequest,
	}
)

// NewValidationError wraps an ozzo validation error.
func NewValidationError(err error) *AppError {
	return &AppError{
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewUnavailableError marks a data-access failure surfaced to clients.
func NewUnavailableError(err error) *AppError {
	return &AppError{
		Code:       ErrCodeServiceUnavailable,
		Message:    "Pricing is temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}
