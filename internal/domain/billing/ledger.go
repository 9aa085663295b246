package billing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Totals is the aggregate position of an enrollment
type Totals struct {
	EnrollmentID  uuid.UUID       `json:"enrollment_id"`
	Currency      string          `json:"currency"`
	TotalCharges  decimal.Decimal `json:"total_charges"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	Balance       decimal.Decimal `json:"balance"`
}

// Agrees reports whether two totals match within MoneyTolerance
func (t Totals) Agrees(other Totals) bool {
	return MoneyEqual(t.TotalCharges, other.TotalCharges) &&
		MoneyEqual(t.TotalPayments, other.TotalPayments) &&
		MoneyEqual(t.Balance, other.Balance)
}

// ComputeTotals derives totals from raw records: non-void charges minus
// posted payments. This is the ground truth every cached balance must match.
func ComputeTotals(enrollmentID uuid.UUID, charges []Charge, payments []Payment) Totals {
	chargeAmounts := make([]decimal.Decimal, 0, len(charges))
	for i := range charges {
		if charges[i].Status.CountsTowardBalance() {
			chargeAmounts = append(chargeAmounts, charges[i].Amount)
		}
	}
	paymentAmounts := make([]decimal.Decimal, 0, len(payments))
	for i := range payments {
		if payments[i].Status.CountsTowardBalance() {
			paymentAmounts = append(paymentAmounts, payments[i].Amount)
		}
	}
	totalCharges := SumMoney(chargeAmounts...)
	totalPayments := SumMoney(paymentAmounts...)
	return Totals{
		EnrollmentID:  enrollmentID,
		TotalCharges:  totalCharges,
		TotalPayments: totalPayments,
		Balance:       RoundMoney(totalCharges.Sub(totalPayments)),
	}
}

// ChargeLine is a charge enriched with its allocation state
type ChargeLine struct {
	Charge
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
}

// IsOpen reports whether the line can still receive allocations
func (l ChargeLine) IsOpen() bool {
	return IsOpenForAllocation(&l.Charge, l.PendingAmount)
}

// PaymentLine is a payment enriched with the amount it allocated
type PaymentLine struct {
	Payment
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// Ledger is the full financial picture of one enrollment
type Ledger struct {
	Enrollment Enrollment    `json:"enrollment"`
	Totals     Totals        `json:"totals"`
	Charges    []ChargeLine  `json:"charges"`
	Payments   []PaymentLine `json:"payments"`
}

// BuildLedger merges charges and payments with the allocation indexes.
// Charges are ordered newest first by creation, payments newest first by paid-at.
func BuildLedger(enrollment Enrollment, totals Totals, charges []Charge, payments []Payment, allocations []Allocation) *Ledger {
	idx := NewAllocationIndex(allocations)

	chargeLines := make([]ChargeLine, 0, len(charges))
	for _, c := range charges {
		allocated := idx.AllocatedToCharge(c.ID)
		chargeLines = append(chargeLines, ChargeLine{
			Charge:          c,
			AllocatedAmount: allocated,
			PendingAmount:   PendingFromAllocated(c.Amount, allocated),
		})
	}
	sort.SliceStable(chargeLines, func(i, j int) bool {
		return chargeLines[i].CreatedAt.After(chargeLines[j].CreatedAt)
	})

	paymentLines := make([]PaymentLine, 0, len(payments))
	for _, p := range payments {
		paymentLines = append(paymentLines, PaymentLine{
			Payment:         p,
			AllocatedAmount: idx.AllocatedFromPayment(p.ID),
		})
	}
	sort.SliceStable(paymentLines, func(i, j int) bool {
		return paymentLines[i].PaidAt.After(paymentLines[j].PaidAt)
	})

	totals.EnrollmentID = enrollment.ID
	totals.Currency = enrollment.Currency
	return &Ledger{
		Enrollment: enrollment,
		Totals:     totals,
		Charges:    chargeLines,
		Payments:   paymentLines,
	}
}

// PendingCharges returns the lines that can still receive allocations,
// keyed by charge id
func (l *Ledger) PendingCharges() map[uuid.UUID]ChargeLine {
	pending := make(map[uuid.UUID]ChargeLine)
	for _, line := range l.Charges {
		if line.IsOpen() {
			pending[line.ID] = line
		}
	}
	return pending
}

// ChargeIDs returns the ids of every charge in the ledger
func ChargeIDs(charges []Charge) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(charges))
	for _, c := range charges {
		ids = append(ids, c.ID)
	}
	return ids
}

// PaymentIDs returns the ids of every payment in the ledger
func PaymentIDs(payments []Payment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.ID)
	}
	return ids
}
