package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation records how much of a payment was applied to a charge
type Allocation struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	ChargeID  uuid.UUID       `json:"charge_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PendingAmount returns the unallocated remainder of a charge. It is clamped
// at zero even if the charge was over-allocated upstream.
func PendingAmount(charge *Charge, allocations []Allocation) decimal.Decimal {
	allocated := make([]decimal.Decimal, 0, len(allocations))
	for _, a := range allocations {
		if a.ChargeID == charge.ID {
			allocated = append(allocated, a.Amount)
		}
	}
	return PendingFromAllocated(charge.Amount, SumMoney(allocated...))
}

// PendingFromAllocated computes max(amount - allocated, 0) at cent precision
func PendingFromAllocated(amount, allocated decimal.Decimal) decimal.Decimal {
	return ClampZero(RoundMoney(amount.Sub(allocated)))
}

// IsOpenForAllocation reports whether a charge can still receive allocations
func IsOpenForAllocation(charge *Charge, pending decimal.Decimal) bool {
	return !charge.IsVoid() && pending.IsPositive()
}

// AllocationIndex sums allocation amounts per charge and per payment
type AllocationIndex struct {
	byCharge  map[uuid.UUID]decimal.Decimal
	byPayment map[uuid.UUID]decimal.Decimal
}

// NewAllocationIndex builds both indexes in one pass
func NewAllocationIndex(allocations []Allocation) AllocationIndex {
	idx := AllocationIndex{
		byCharge:  make(map[uuid.UUID]decimal.Decimal),
		byPayment: make(map[uuid.UUID]decimal.Decimal),
	}
	for _, a := range allocations {
		idx.byCharge[a.ChargeID] = idx.byCharge[a.ChargeID].Add(a.Amount)
		idx.byPayment[a.PaymentID] = idx.byPayment[a.PaymentID].Add(a.Amount)
	}
	return idx
}

// AllocatedToCharge returns the rounded sum allocated to chargeID
func (idx AllocationIndex) AllocatedToCharge(chargeID uuid.UUID) decimal.Decimal {
	return RoundMoney(idx.byCharge[chargeID])
}

// AllocatedFromPayment returns the rounded sum allocated from paymentID
func (idx AllocationIndex) AllocatedFromPayment(paymentID uuid.UUID) decimal.Decimal {
	return RoundMoney(idx.byPayment[paymentID])
}
