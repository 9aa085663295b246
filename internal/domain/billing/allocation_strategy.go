package billing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SuggestedAllocation is one line of an allocation proposal
type SuggestedAllocation struct {
	ChargeID      uuid.UUID       `json:"charge_id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PendingBefore decimal.Decimal `json:"pending_before"`
	PendingAfter  decimal.Decimal `json:"pending_after"`
}

// AllocationSuggestion proposes how a payment amount could be spread
type AllocationSuggestion struct {
	Strategy    string                `json:"strategy"`
	Amount      decimal.Decimal       `json:"amount"`
	Allocations []SuggestedAllocation `json:"allocations"`
	Allocated   decimal.Decimal       `json:"allocated"`
	Remaining   decimal.Decimal       `json:"remaining"`
}

// AllocationStrategy spreads a payment amount across open charges
type AllocationStrategy interface {
	Name() string
	Suggest(amount decimal.Decimal, charges []ChargeLine) AllocationSuggestion
}

// FIFOAllocationStrategy fills the oldest obligations first: earliest due
// date, then charges without a due date, ties broken by creation time.
type FIFOAllocationStrategy struct{}

// NewFIFOAllocationStrategy creates a new FIFO allocation strategy
func NewFIFOAllocationStrategy() *FIFOAllocationStrategy {
	return &FIFOAllocationStrategy{}
}

// Name returns the strategy identifier
func (s *FIFOAllocationStrategy) Name() string {
	return "fifo"
}

// Suggest never allocates more than a charge's pending amount; any amount
// left over is reported as Remaining.
func (s *FIFOAllocationStrategy) Suggest(amount decimal.Decimal, charges []ChargeLine) AllocationSuggestion {
	open := make([]ChargeLine, 0, len(charges))
	for _, c := range charges {
		if c.IsOpen() {
			open = append(open, c)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		di, dj := open[i].DueDate, open[j].DueDate
		switch {
		case di != nil && dj != nil && !di.Equal(*dj):
			return di.Before(*dj)
		case di != nil && dj == nil:
			return true
		case di == nil && dj != nil:
			return false
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	remaining := RoundMoney(amount)
	allocated := decimal.Zero
	lines := make([]SuggestedAllocation, 0, len(open))
	for _, c := range open {
		if !remaining.IsPositive() {
			break
		}
		portion := decimal.Min(remaining, c.PendingAmount)
		lines = append(lines, SuggestedAllocation{
			ChargeID:      c.ID,
			Description:   c.Description,
			Amount:        portion,
			PendingBefore: c.PendingAmount,
			PendingAfter:  RoundMoney(c.PendingAmount.Sub(portion)),
		})
		remaining = RoundMoney(remaining.Sub(portion))
		allocated = allocated.Add(portion)
	}

	return AllocationSuggestion{
		Strategy:    s.Name(),
		Amount:      RoundMoney(amount),
		Allocations: lines,
		Allocated:   RoundMoney(allocated),
		Remaining:   remaining,
	}
}
