package handler

import (
	"context"
	"strings"

	billingapp "github.com/academy/backend/internal/application/billing"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/interfaces/http/dto"
	"github.com/academy/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerQueries reads an enrollment's ledger
type LedgerQueries interface {
	GetEnrollmentLedger(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID) (*billing.Ledger, error)
	SuggestAllocations(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, rawAmount string) (*billing.AllocationSuggestion, error)
}

// PaymentPoster records manual payments
type PaymentPoster interface {
	PostPayment(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, form billingapp.PostPaymentRequest) (*billingapp.PostPaymentResult, error)
}

// ChargeCommands creates and voids charges
type ChargeCommands interface {
	CreateCharge(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, form billingapp.CreateChargeRequest) (*billing.Charge, error)
	VoidCharge(ctx context.Context, actor *billing.Actor, chargeID uuid.UUID) (*billing.Charge, error)
	ListChargeTypes(ctx context.Context, actor *billing.Actor) ([]billing.ChargeType, error)
}

// BillingHandler serves the ledger, payment and charge endpoints
type BillingHandler struct {
	BaseHandler
	ledger   LedgerQueries
	payments PaymentPoster
	charges  ChargeCommands
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(ledger LedgerQueries, payments PaymentPoster, charges ChargeCommands) *BillingHandler {
	return &BillingHandler{ledger: ledger, payments: payments, charges: charges}
}

// GetLedger godoc
// @Summary      Enrollment ledger
// @Description  Charges and payments of an enrollment with allocation totals and balance
// @Tags         billing
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Router       /enrollments/{id}/ledger [get]
func (h *BillingHandler) GetLedger(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	ledger, err := h.ledger.GetEnrollmentLedger(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewLedgerResponse(ledger))
}

// SuggestAllocations godoc
// @Summary      Suggest an allocation
// @Description  Spreads ?amount= over pending charges, earliest due first
// @Tags         billing
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Param        amount query string true "Payment amount"
// @Router       /enrollments/{id}/allocation-suggestion [get]
func (h *BillingHandler) SuggestAllocations(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	suggestion, err := h.ledger.SuggestAllocations(c.Request.Context(), actor(c), id, c.Query("amount"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSuggestionResponse(suggestion))
}

// PostPayment godoc
// @Summary      Post a manual payment
// @Description  Records a payment and its allocations against pending charges
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Param        request body dto.PostPaymentRequest true "Payment form"
// @Router       /enrollments/{id}/payments [post]
func (h *BillingHandler) PostPayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req dto.PostPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	form := billingapp.PostPaymentRequest{
		Amount: req.Amount,
		Method: req.Method,
		Notes:  req.Notes,
	}
	for _, entry := range req.Allocations {
		form.Allocations = append(form.Allocations, billingapp.AllocationEntry{ChargeID: entry.ChargeID, Amount: entry.Amount})
	}

	result, err := h.payments.PostPayment(c.Request.Context(), actor(c), id, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.PostPaymentResponse{
		PaymentID:   result.PaymentID,
		ProviderRef: result.ProviderRef,
		Amount:      dto.Money(result.Amount),
		Allocations: result.Allocations,
	})
}

// CreateCharge godoc
// @Summary      Create a charge
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Param        request body dto.CreateChargeRequest true "Charge form"
// @Router       /enrollments/{id}/charges [post]
func (h *BillingHandler) CreateCharge(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req dto.CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	charge, err := h.charges.CreateCharge(c.Request.Context(), actor(c), id, billingapp.CreateChargeRequest{
		ChargeTypeID: req.ChargeTypeID,
		Description:  req.Description,
		Amount:       req.Amount,
		DueDate:      req.DueDate,
		PeriodTag:    strings.TrimSpace(req.PeriodTag),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewChargeResponse(charge))
}

// VoidCharge godoc
// @Summary      Void a charge
// @Tags         billing
// @Produce      json
// @Param        id path string true "Charge ID"
// @Router       /charges/{id}/void [post]
func (h *BillingHandler) VoidCharge(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	charge, err := h.charges.VoidCharge(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewChargeResponse(charge))
}

// ListChargeTypes godoc
// @Summary      Active charge types
// @Tags         billing
// @Produce      json
// @Router       /charge-types [get]
func (h *BillingHandler) ListChargeTypes(c *gin.Context) {
	types, err := h.charges.ListChargeTypes(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, types)
}
