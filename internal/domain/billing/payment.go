package billing

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPosted   PaymentStatus = "posted"
	PaymentStatusVoid     PaymentStatus = "void"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPosted, PaymentStatusVoid, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CountsTowardBalance returns true if payments in this status reduce balances
func (s PaymentStatus) CountsTowardBalance() bool {
	return s == PaymentStatusPosted
}

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash              PaymentMethod = "cash"
	PaymentMethodTransfer          PaymentMethod = "transfer"
	PaymentMethodCard              PaymentMethod = "card"
	PaymentMethodExternalProcessor PaymentMethod = "external_processor"
	PaymentMethodOther             PaymentMethod = "other"
)

// AllPaymentMethods lists the accepted methods in display order
var AllPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodTransfer,
	PaymentMethodCard,
	PaymentMethodExternalProcessor,
	PaymentMethodOther,
}

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard,
		PaymentMethodExternalProcessor, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ExternalSourceManual tags payments recorded by staff through this service
const ExternalSourceManual = "manual"

// Payment is an amount received against an enrollment
type Payment struct {
	shared.BaseEntity
	EnrollmentID   uuid.UUID       `json:"enrollment_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Method         PaymentMethod   `json:"method"`
	Status         PaymentStatus   `json:"status"`
	PaidAt         time.Time       `json:"paid_at"`
	Notes          string          `json:"notes,omitempty"`
	ProviderRef    string          `json:"provider_ref"`
	ExternalSource string          `json:"external_source"`
	CreatedBy      *uuid.UUID      `json:"created_by,omitempty"`
}

// IsPosted returns true if the payment counts toward totals
func (p *Payment) IsPosted() bool {
	return p.Status == PaymentStatusPosted
}
