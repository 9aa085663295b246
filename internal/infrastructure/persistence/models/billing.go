package models

import (
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeTypeModel is the persistence model for the charge type catalog
type ChargeTypeModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code     string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string    `gorm:"type:varchar(120);not null"`
	IsActive bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChargeTypeModel) TableName() string {
	return "charge_types"
}

// ToDomain converts the model to a domain ChargeType
func (m *ChargeTypeModel) ToDomain() billing.ChargeType {
	return billing.ChargeType{ID: m.ID, Code: m.Code, Name: m.Name, IsActive: m.IsActive}
}

// ChargeModel is the persistence model for charges
type ChargeModel struct {
	BaseModel
	EnrollmentID uuid.UUID            `gorm:"type:uuid;not null;index"`
	ChargeTypeID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Description  string               `gorm:"type:varchar(500);not null"`
	Amount       decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency     string               `gorm:"type:varchar(3);not null"`
	Status       billing.ChargeStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate      *time.Time           `gorm:"type:date;index"`
	PeriodMonth  *string              `gorm:"type:varchar(7)"`
	CreatedBy    *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ChargeModel) TableName() string {
	return "charges"
}

// ToDomain converts the model to a domain Charge
func (m *ChargeModel) ToDomain() *billing.Charge {
	return &billing.Charge{
		BaseEntity:   m.BaseModel.ToDomain(),
		EnrollmentID: m.EnrollmentID,
		ChargeTypeID: m.ChargeTypeID,
		Description:  m.Description,
		Amount:       billing.RoundMoney(m.Amount),
		Currency:     m.Currency,
		Status:       m.Status,
		DueDate:      m.DueDate,
		PeriodTag:    derefString(m.PeriodMonth),
		CreatedBy:    m.CreatedBy,
	}
}

// FromDomain populates the model from a domain Charge
func (m *ChargeModel) FromDomain(c *billing.Charge) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.EnrollmentID = c.EnrollmentID
	m.ChargeTypeID = c.ChargeTypeID
	m.Description = c.Description
	m.Amount = billing.RoundMoney(c.Amount)
	m.Currency = c.Currency
	m.Status = c.Status
	m.DueDate = utcPtr(c.DueDate)
	m.PeriodMonth = stringPtr(c.PeriodTag)
	m.CreatedBy = c.CreatedBy
}

// ChargeWithTypeRow is a charge joined with its charge type code and name
type ChargeWithTypeRow struct {
	ChargeModel
	TypeCode *string
	TypeName *string
}

// ToDomain converts the row to a domain Charge carrying its type labels
func (r *ChargeWithTypeRow) ToDomain() billing.Charge {
	c := r.ChargeModel.ToDomain()
	c.TypeCode = derefString(r.TypeCode)
	c.TypeName = derefString(r.TypeName)
	return *c
}

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	BaseModel
	EnrollmentID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Currency       string                `gorm:"type:varchar(3);not null"`
	Method         billing.PaymentMethod `gorm:"type:varchar(30);not null"`
	Status         billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'posted';index"`
	PaidAt         time.Time             `gorm:"not null;index"`
	Notes          *string               `gorm:"type:text"`
	ProviderRef    string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	ExternalSource string                `gorm:"type:varchar(30);not null"`
	CreatedBy      *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:     m.BaseModel.ToDomain(),
		EnrollmentID:   m.EnrollmentID,
		Amount:         billing.RoundMoney(m.Amount),
		Currency:       m.Currency,
		Method:         m.Method,
		Status:         m.Status,
		PaidAt:         m.PaidAt,
		Notes:          derefString(m.Notes),
		ProviderRef:    m.ProviderRef,
		ExternalSource: m.ExternalSource,
		CreatedBy:      m.CreatedBy,
	}
}

// FromDomain populates the model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.EnrollmentID = p.EnrollmentID
	m.Amount = billing.RoundMoney(p.Amount)
	m.Currency = p.Currency
	m.Method = p.Method
	m.Status = p.Status
	m.PaidAt = p.PaidAt.UTC()
	m.Notes = stringPtr(p.Notes)
	m.ProviderRef = p.ProviderRef
	m.ExternalSource = p.ExternalSource
	m.CreatedBy = p.CreatedBy
}

// AllocationModel is the persistence model for payment allocations
type AllocationModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChargeID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the model to a domain Allocation
func (m *AllocationModel) ToDomain() billing.Allocation {
	return billing.Allocation{
		ID:        m.ID,
		PaymentID: m.PaymentID,
		ChargeID:  m.ChargeID,
		Amount:    billing.RoundMoney(m.Amount),
	}
}

// FromDomain populates the model from a domain Allocation
func (m *AllocationModel) FromDomain(a billing.Allocation, now time.Time) {
	m.ID = a.ID
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.PaymentID = a.PaymentID
	m.ChargeID = a.ChargeID
	m.Amount = billing.RoundMoney(a.Amount)
	m.CreatedAt = now.UTC()
}

// BalanceRow is one row of the v_enrollment_balances view
type BalanceRow struct {
	EnrollmentID  uuid.UUID
	Currency      *string
	TotalCharges  decimal.Decimal
	TotalPayments decimal.Decimal
	Balance       decimal.Decimal
}

// TableName returns the view name for GORM
func (BalanceRow) TableName() string {
	return "v_enrollment_balances"
}

// ToDomain converts the row to domain Totals. SQLite sums decimals as
// floats, so every figure is rounded back to the cent.
func (r *BalanceRow) ToDomain() billing.Totals {
	currency := derefString(r.Currency)
	if currency == "" {
		currency = billing.DefaultCurrency
	}
	return billing.Totals{
		EnrollmentID:  r.EnrollmentID,
		Currency:      currency,
		TotalCharges:  billing.RoundMoney(r.TotalCharges),
		TotalPayments: billing.RoundMoney(r.TotalPayments),
		Balance:       billing.RoundMoney(r.Balance),
	}
}
