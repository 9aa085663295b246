package billing

import "github.com/academy/backend/internal/domain/shared"

// Rejection codes returned by billing operations. They are part of the public
// contract: callers render specific guidance per code.
const (
	CodeInvalidForm                = "invalid_form"
	CodeUnauthenticated            = "unauthenticated"
	CodeForbidden                  = "forbidden"
	CodeEnrollmentNotFound         = "enrollment_not_found"
	CodeChargeNotFound             = "charge_not_found"
	CodeInvalidChargeType          = "invalid_charge_type"
	CodeNoPendingCharges           = "no_pending_charges"
	CodeNoAllocations              = "no_allocations"
	CodeAllocationExceedsPayment   = "allocation_exceeds_payment"
	CodeAllocationMustMatchPayment = "allocation_must_match_payment"
	CodeAllocationExceedsPending   = "allocation_exceeds_pending"
	CodePaymentInsertFailed        = "payment_insert_failed"
	CodeAllocationInsertFailed     = "allocation_insert_failed"
	CodeInsertFailed               = "insert_failed"
	CodeUpdateFailed               = "update_failed"
	CodeInvalidState               = "invalid_state"
	CodePostingInProgress          = "posting_in_progress"
	CodeInvalidCurrency            = "invalid_currency"
)

var (
	ErrInvalidForm                = shared.NewDomainError(CodeInvalidForm, "Form data is missing or malformed")
	ErrUnauthenticated            = shared.NewDomainError(CodeUnauthenticated, "An authenticated actor is required")
	ErrForbidden                  = shared.NewDomainError(CodeForbidden, "Actor is not allowed to perform this operation")
	ErrEnrollmentNotFound         = shared.NewDomainError(CodeEnrollmentNotFound, "Enrollment not found")
	ErrChargeNotFound             = shared.NewDomainError(CodeChargeNotFound, "Charge not found")
	ErrInvalidChargeType          = shared.NewDomainError(CodeInvalidChargeType, "Charge type is unknown or inactive")
	ErrNoPendingCharges           = shared.NewDomainError(CodeNoPendingCharges, "Enrollment has no pending charges")
	ErrNoAllocations              = shared.NewDomainError(CodeNoAllocations, "No allocation targets a pending charge")
	ErrAllocationExceedsPayment   = shared.NewDomainError(CodeAllocationExceedsPayment, "Allocated total exceeds the payment amount")
	ErrAllocationMustMatchPayment = shared.NewDomainError(CodeAllocationMustMatchPayment, "Allocated total must equal the payment amount")
	ErrAllocationExceedsPending   = shared.NewDomainError(CodeAllocationExceedsPending, "Allocation exceeds the charge pending amount")
	ErrPaymentInsertFailed        = shared.NewDomainError(CodePaymentInsertFailed, "Payment could not be recorded")
	ErrAllocationInsertFailed     = shared.NewDomainError(CodeAllocationInsertFailed, "Allocations could not be recorded")
	ErrInsertFailed               = shared.NewDomainError(CodeInsertFailed, "Record could not be created")
	ErrUpdateFailed               = shared.NewDomainError(CodeUpdateFailed, "Record could not be updated")
	ErrInvalidState               = shared.NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrPostingInProgress          = shared.NewDomainError(CodePostingInProgress, "Another payment is being posted for this enrollment")
	ErrInvalidCurrency            = shared.NewDomainError(CodeInvalidCurrency, "Currency code is not a valid ISO 4217 code")
)

// invalidForm returns an invalid_form rejection carrying a field specific message.
func invalidForm(message string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidForm, message)
}
