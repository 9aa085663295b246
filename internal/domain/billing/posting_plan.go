package billing

import (
	"context"
	"fmt"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentWriter is the phase-one store: one payment row, undoable by delete
type PaymentWriter interface {
	Create(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AllocationWriter is the phase-two store: all allocation rows of a payment
type AllocationWriter interface {
	CreateBatch(ctx context.Context, allocations []Allocation) error
}

// PostingPlan accumulates the writes of a payment posting and commits them in
// two phases. The store offers no multi-row transaction, so a phase-two
// failure is undone by deleting the phase-one row.
type PostingPlan struct {
	payment     *Payment
	allocations []Allocation
	state       PostingState
}

// NewPostingPlan starts a plan for payment
func NewPostingPlan(payment *Payment) *PostingPlan {
	return &PostingPlan{
		payment: payment,
		state:   PostingStateAllocationsValidated,
	}
}

// Allocate adds an allocation of amount to chargeID
func (p *PostingPlan) Allocate(chargeID uuid.UUID, amount decimal.Decimal) *PostingPlan {
	p.allocations = append(p.allocations, Allocation{
		ID:        uuid.New(),
		PaymentID: p.payment.ID,
		ChargeID:  chargeID,
		Amount:    RoundMoney(amount),
	})
	return p
}

// Payment returns the planned payment row
func (p *PostingPlan) Payment() *Payment {
	return p.payment
}

// Allocations returns the planned allocation rows
func (p *PostingPlan) Allocations() []Allocation {
	return p.allocations
}

// State returns the last state reached by the plan
func (p *PostingPlan) State() PostingState {
	return p.state
}

// Balanced reports whether the planned allocations add up to the payment
func (p *PostingPlan) Balanced() bool {
	amounts := make([]decimal.Decimal, 0, len(p.allocations))
	for _, a := range p.allocations {
		amounts = append(amounts, a.Amount)
	}
	return len(p.allocations) > 0 && MoneyEqual(SumMoney(amounts...), p.payment.Amount)
}

// Commit writes the payment, then its allocations. When the allocations
// cannot be written the payment is deleted again. The returned error is a
// *PostingFailure whose rejection code identifies the failed phase.
func (p *PostingPlan) Commit(ctx context.Context, payments PaymentWriter, allocations AllocationWriter) error {
	if !p.Balanced() {
		p.state = PostingStateRejected
		return ErrAllocationMustMatchPayment
	}

	if err := payments.Create(ctx, p.payment); err != nil {
		p.state = PostingStateRejected
		return &PostingFailure{Rejection: ErrPaymentInsertFailed, Cause: err}
	}
	p.state = PostingStatePaymentInserted

	if err := allocations.CreateBatch(ctx, p.allocations); err != nil {
		p.state = PostingStateRejected
		failure := &PostingFailure{Rejection: ErrAllocationInsertFailed, Cause: err, PaymentID: p.payment.ID}
		if delErr := payments.Delete(ctx, p.payment.ID); delErr != nil {
			failure.CompensationErr = delErr
		}
		return failure
	}
	p.state = PostingStateAllocationsInserted
	return nil
}

// MarkCommitted records that post-commit side effects have run
func (p *PostingPlan) MarkCommitted() {
	if p.state == PostingStateAllocationsInserted {
		p.state = PostingStateCommitted
	}
}

// PostingFailure describes a persistence failure during Commit
type PostingFailure struct {
	Rejection       *shared.DomainError
	Cause           error
	PaymentID       uuid.UUID
	CompensationErr error
}

// Error implements the error interface
func (f *PostingFailure) Error() string {
	if f.CompensationErr != nil {
		return fmt.Sprintf("%s: %v (compensating delete of payment %s failed: %v)",
			f.Rejection.Code, f.Cause, f.PaymentID, f.CompensationErr)
	}
	return fmt.Sprintf("%s: %v", f.Rejection.Code, f.Cause)
}

// Unwrap exposes both the rejection and the underlying store error
func (f *PostingFailure) Unwrap() []error {
	return []error{f.Rejection, f.Cause}
}

// Orphaned reports whether a payment row may have been left behind
func (f *PostingFailure) Orphaned() bool {
	return f.CompensationErr != nil
}
