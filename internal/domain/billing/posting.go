package billing

import (
	"sort"
	"strings"
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingState is a step of the payment posting state machine
type PostingState string

const (
	PostingStateValidating           PostingState = "validating"
	PostingStatePendingChargesLoaded PostingState = "pending_charges_loaded"
	PostingStateAllocationsValidated PostingState = "allocations_validated"
	PostingStatePaymentInserted      PostingState = "payment_inserted"
	PostingStateAllocationsInserted  PostingState = "allocations_inserted"
	PostingStateCommitted            PostingState = "committed"
	PostingStateRejected             PostingState = "rejected"
)

// String returns the string representation of PostingState
func (s PostingState) String() string {
	return string(s)
}

// AllocationRequest asks for amount of the payment to be applied to a charge
type AllocationRequest struct {
	ChargeID uuid.UUID
	Amount   decimal.Decimal
}

// PaymentRequest is the caller's intent to post a payment
type PaymentRequest struct {
	Amount      decimal.Decimal
	Method      PaymentMethod
	Notes       string
	Allocations []AllocationRequest
}

// Validate checks amount and method. Allocation entries are filtered later,
// not rejected here.
func (r PaymentRequest) Validate() error {
	if !RoundMoney(r.Amount).IsPositive() {
		return invalidForm("Amount must be greater than zero")
	}
	if !r.Method.IsValid() {
		return invalidForm("Payment method is not supported")
	}
	return nil
}

// NormalizedAllocations drops entries without a charge id or with a
// non-positive rounded amount, and merges entries that repeat a charge.
// The result is ordered by charge id for deterministic inserts.
func (r PaymentRequest) NormalizedAllocations() []AllocationRequest {
	byCharge := make(map[uuid.UUID]decimal.Decimal)
	for _, a := range r.Allocations {
		amount := RoundMoney(a.Amount)
		if a.ChargeID == uuid.Nil || !amount.IsPositive() {
			continue
		}
		byCharge[a.ChargeID] = byCharge[a.ChargeID].Add(amount)
	}
	out := make([]AllocationRequest, 0, len(byCharge))
	for id, amount := range byCharge {
		out = append(out, AllocationRequest{ChargeID: id, Amount: RoundMoney(amount)})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].ChargeID.String(), out[j].ChargeID.String()) < 0
	})
	return out
}

// SelectAllocations applies the business rules of a posting against the
// current ledger and returns the allocations to persist.
//
// Rules, in order: the ledger must have open charges; only allocations that
// target an open charge are kept; their rounded sum must equal the payment
// amount; no allocation may exceed the pending amount of its charge.
func SelectAllocations(ledger *Ledger, amount decimal.Decimal, requested []AllocationRequest) ([]AllocationRequest, error) {
	pending := ledger.PendingCharges()
	if len(pending) == 0 {
		return nil, ErrNoPendingCharges
	}

	kept := make([]AllocationRequest, 0, len(requested))
	for _, a := range requested {
		if _, ok := pending[a.ChargeID]; ok {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoAllocations
	}

	amounts := make([]decimal.Decimal, 0, len(kept))
	for _, a := range kept {
		amounts = append(amounts, a.Amount)
	}
	total := SumMoney(amounts...)
	amount = RoundMoney(amount)
	if MoneyExceeds(total, amount) {
		return nil, ErrAllocationExceedsPayment
	}
	if !MoneyEqual(total, amount) {
		return nil, ErrAllocationMustMatchPayment
	}

	for _, a := range kept {
		if MoneyExceeds(a.Amount, pending[a.ChargeID].PendingAmount) {
			return nil, shared.NewDomainError(CodeAllocationExceedsPending,
				"Allocation of "+a.Amount.StringFixed(MoneyScale)+" exceeds pending "+
					pending[a.ChargeID].PendingAmount.StringFixed(MoneyScale)+" on charge "+a.ChargeID.String())
		}
	}
	return kept, nil
}

// ReferenceGenerator issues unique provider reference tokens for payments
type ReferenceGenerator interface {
	NextReference(now time.Time) string
}

// NewManualPayment builds the posted payment row for a staff posting
func NewManualPayment(enrollment *Enrollment, req PaymentRequest, actorID uuid.UUID, reference string, now time.Time) *Payment {
	createdBy := actorID
	return &Payment{
		BaseEntity:     shared.NewBaseEntityAt(now),
		EnrollmentID:   enrollment.ID,
		Amount:         RoundMoney(req.Amount),
		Currency:       enrollment.Currency,
		Method:         req.Method,
		Status:         PaymentStatusPosted,
		PaidAt:         now,
		Notes:          strings.TrimSpace(req.Notes),
		ProviderRef:    reference,
		ExternalSource: ExternalSourceManual,
		CreatedBy:      &createdBy,
	}
}
