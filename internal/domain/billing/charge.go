package billing

import (
	"strings"
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeStatus represents the lifecycle status of a charge
type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "pending"
	ChargeStatusPosted  ChargeStatus = "posted"
	ChargeStatusVoid    ChargeStatus = "void"
)

// IsValid checks if the status is a valid ChargeStatus
func (s ChargeStatus) IsValid() bool {
	switch s {
	case ChargeStatusPending, ChargeStatusPosted, ChargeStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of ChargeStatus
func (s ChargeStatus) String() string {
	return string(s)
}

// CountsTowardBalance returns true if charges in this status are owed
func (s ChargeStatus) CountsTowardBalance() bool {
	return s != ChargeStatusVoid
}

// CanVoid returns true if a charge in this status can be voided
func (s ChargeStatus) CanVoid() bool {
	return s == ChargeStatusPending || s == ChargeStatusPosted
}

// minDescriptionLength is the shortest accepted charge description
const minDescriptionLength = 3

// ChargeType is a catalog entry describing why a charge is owed
type ChargeType struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// Charge is an amount owed by an enrollment
type Charge struct {
	shared.BaseEntity
	EnrollmentID uuid.UUID       `json:"enrollment_id"`
	ChargeTypeID uuid.UUID       `json:"charge_type_id"`
	TypeCode     string          `json:"type_code,omitempty"`
	TypeName     string          `json:"type_name,omitempty"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       ChargeStatus    `json:"status"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	PeriodTag    string          `json:"period_tag,omitempty"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
}

// NewChargeInput carries the validated intent to create a charge
type NewChargeInput struct {
	ChargeTypeID uuid.UUID
	Description  string
	Amount       decimal.Decimal
	DueDate      *time.Time
	PeriodTag    string
}

// Validate checks the structural rules of a charge request
func (in NewChargeInput) Validate() error {
	if in.ChargeTypeID == uuid.Nil {
		return invalidForm("Charge type is required")
	}
	if len([]rune(strings.TrimSpace(in.Description))) < minDescriptionLength {
		return invalidForm("Description must be at least 3 characters")
	}
	if !RoundMoney(in.Amount).IsPositive() {
		return invalidForm("Amount must be greater than zero")
	}
	return nil
}

// NewCharge creates a pending charge for the enrollment in its currency
func NewCharge(enrollment *Enrollment, in NewChargeInput, actorID uuid.UUID, now time.Time) (*Charge, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrEnrollmentNotFound
	}
	createdBy := actorID
	return &Charge{
		BaseEntity:   shared.NewBaseEntityAt(now),
		EnrollmentID: enrollment.ID,
		ChargeTypeID: in.ChargeTypeID,
		Description:  strings.TrimSpace(in.Description),
		Amount:       RoundMoney(in.Amount),
		Currency:     enrollment.Currency,
		Status:       ChargeStatusPending,
		DueDate:      in.DueDate,
		PeriodTag:    strings.TrimSpace(in.PeriodTag),
		CreatedBy:    &createdBy,
	}, nil
}

// Void transitions the charge to void. Allocations already applied to the
// charge are kept.
func (c *Charge) Void() error {
	if !c.Status.CanVoid() {
		return shared.NewDomainError(CodeInvalidState, "Charge is already void")
	}
	c.Status = ChargeStatusVoid
	return nil
}

// IsVoid returns true if the charge no longer counts toward balances
func (c *Charge) IsVoid() bool {
	return c.Status == ChargeStatusVoid
}
