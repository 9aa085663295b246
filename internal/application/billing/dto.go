package billing

import (
	"strings"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationEntry is one raw allocation row of a payment form
type AllocationEntry struct {
	ChargeID string `json:"charge_id"`
	Amount   string `json:"amount"`
}

// PostPaymentRequest carries the raw payment form fields
type PostPaymentRequest struct {
	Amount      string            `json:"amount"`
	Method      string            `json:"method"`
	Notes       string            `json:"notes"`
	Allocations []AllocationEntry `json:"allocations"`
}

// ToDomain parses the form. The amount and method must be valid; allocation
// entries with an unparsable charge id or amount are dropped, matching how
// blank form rows are ignored.
func (r PostPaymentRequest) ToDomain() (billing.PaymentRequest, error) {
	amount, err := billing.ParseMoney(r.Amount)
	if err != nil {
		return billing.PaymentRequest{}, shared.NewDomainError(billing.CodeInvalidForm, "Amount must be a number")
	}
	req := billing.PaymentRequest{
		Amount: amount,
		Method: billing.PaymentMethod(strings.ToLower(strings.TrimSpace(r.Method))),
		Notes:  r.Notes,
	}
	for _, entry := range r.Allocations {
		chargeID, err := uuid.Parse(strings.TrimSpace(entry.ChargeID))
		if err != nil {
			continue
		}
		amount, err := billing.ParseMoney(entry.Amount)
		if err != nil {
			continue
		}
		req.Allocations = append(req.Allocations, billing.AllocationRequest{ChargeID: chargeID, Amount: amount})
	}
	return req, nil
}

// PostPaymentResult identifies the payment that was recorded
type PostPaymentResult struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	ProviderRef string          `json:"provider_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Allocations int             `json:"allocations"`
}

// CreateChargeRequest carries the raw charge form fields
type CreateChargeRequest struct {
	ChargeTypeID string `json:"charge_type_id"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	DueDate      string `json:"due_date"`
	PeriodTag    string `json:"period_tag"`
}

// ToDomain parses the form into a charge input. Structural rules such as the
// description length are checked by the domain.
func (r CreateChargeRequest) ToDomain() (billing.NewChargeInput, error) {
	in := billing.NewChargeInput{
		Description: r.Description,
		PeriodTag:   r.PeriodTag,
	}
	if raw := strings.TrimSpace(r.ChargeTypeID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return in, shared.NewDomainError(billing.CodeInvalidForm, "Charge type is malformed")
		}
		in.ChargeTypeID = id
	}
	amount, err := billing.ParseMoney(r.Amount)
	if err != nil {
		return in, shared.NewDomainError(billing.CodeInvalidForm, "Amount must be a number")
	}
	in.Amount = amount
	if raw := strings.TrimSpace(r.DueDate); raw != "" {
		due, err := billing.ParseDate(raw)
		if err != nil {
			return in, shared.NewDomainError(billing.CodeInvalidForm, "Due date must use YYYY-MM-DD")
		}
		in.DueDate = &due
	}
	return in, in.Validate()
}

// DashboardQuery selects the campus and month of the dashboard
type DashboardQuery struct {
	CampusID *uuid.UUID
	Month    string
}

// DailyCutQuery selects the campus and calendar day of a cash cut
type DailyCutQuery struct {
	CampusID *uuid.UUID
	Date     string
}

// MonthlySummaryQuery selects the campus and month of a summary
type MonthlySummaryQuery struct {
	CampusID *uuid.UUID
	Month    string
}
