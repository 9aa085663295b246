package dto

import (
	"net/http"

	"github.com/academy/backend/internal/domain/billing"
)

// Codes produced by the HTTP layer itself. Everything else comes from a
// domain rejection and is passed through unchanged.
const (
	CodeInvalidForm     = billing.CodeInvalidForm
	CodeUnauthenticated = billing.CodeUnauthenticated
	CodeForbidden       = billing.CodeForbidden
	CodeNotFound        = "not_found"
	CodeRequestTooLarge = "request_too_large"
	CodeRateLimited     = "rate_limited"
	CodeTimeout         = "timeout"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Input -> 400
	billing.CodeInvalidForm:     http.StatusBadRequest,
	billing.CodeInvalidCurrency: http.StatusBadRequest,

	// Auth
	billing.CodeUnauthenticated: http.StatusUnauthorized,
	billing.CodeForbidden:       http.StatusForbidden,

	// Referential -> 404
	billing.CodeEnrollmentNotFound: http.StatusNotFound,
	billing.CodeChargeNotFound:     http.StatusNotFound,
	CodeNotFound:                   http.StatusNotFound,

	// Business rules -> 422
	billing.CodeInvalidChargeType:          http.StatusUnprocessableEntity,
	billing.CodeNoPendingCharges:           http.StatusUnprocessableEntity,
	billing.CodeNoAllocations:              http.StatusUnprocessableEntity,
	billing.CodeAllocationExceedsPayment:   http.StatusUnprocessableEntity,
	billing.CodeAllocationMustMatchPayment: http.StatusUnprocessableEntity,
	billing.CodeAllocationExceedsPending:   http.StatusUnprocessableEntity,
	billing.CodeInvalidState:               http.StatusUnprocessableEntity,

	// Concurrency
	billing.CodePostingInProgress: http.StatusConflict,

	// Persistence -> 500
	billing.CodePaymentInsertFailed:    http.StatusInternalServerError,
	billing.CodeAllocationInsertFailed: http.StatusInternalServerError,
	billing.CodeInsertFailed:           http.StatusInternalServerError,
	billing.CodeUpdateFailed:           http.StatusInternalServerError,

	// Transport
	CodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeTimeout:         http.StatusGatewayTimeout,
	CodeInternal:        http.StatusInternalServerError,
}

// HTTPStatusForCode returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func HTTPStatusForCode(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
