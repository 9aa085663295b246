package dto

import (
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money renders an amount as a decimal string with two fraction digits
func Money(d decimal.Decimal) string {
	return billing.RoundMoney(d).StringFixed(2)
}

func dateOnly(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

// EnrollmentResponse is the enrollment header of a ledger
type EnrollmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PlayerID        uuid.UUID `json:"player_id"`
	PlayerName      string    `json:"player_name"`
	CampusID        uuid.UUID `json:"campus_id"`
	CampusName      string    `json:"campus_name"`
	CampusCode      string    `json:"campus_code"`
	PricingPlanName string    `json:"pricing_plan_name"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
}

// TotalsResponse is the balance summary of an enrollment
type TotalsResponse struct {
	Currency      string `json:"currency"`
	TotalCharges  string `json:"total_charges"`
	TotalPayments string `json:"total_payments"`
	Balance       string `json:"balance"`
}

// ChargeResponse is a charge as rendered by the API
type ChargeResponse struct {
	ID              uuid.UUID  `json:"id"`
	EnrollmentID    uuid.UUID  `json:"enrollment_id"`
	ChargeTypeID    uuid.UUID  `json:"charge_type_id"`
	TypeCode        string     `json:"type_code,omitempty"`
	TypeName        string     `json:"type_name,omitempty"`
	Description     string     `json:"description"`
	Amount          string     `json:"amount"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	DueDate         *string    `json:"due_date"`
	PeriodTag       string     `json:"period_tag,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	AllocatedAmount *string    `json:"allocated_amount,omitempty"`
	PendingAmount   *string    `json:"pending_amount,omitempty"`
}

// PaymentResponse is a payment as rendered by the API
type PaymentResponse struct {
	ID              uuid.UUID `json:"id"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Method          string    `json:"method"`
	Status          string    `json:"status"`
	PaidAt          time.Time `json:"paid_at"`
	Notes           string    `json:"notes,omitempty"`
	ProviderRef     string    `json:"provider_ref"`
	ExternalSource  string    `json:"external_source"`
	AllocatedAmount string    `json:"allocated_amount"`
}

// LedgerResponse is the full financial picture of one enrollment
type LedgerResponse struct {
	Enrollment EnrollmentResponse `json:"enrollment"`
	Totals     TotalsResponse     `json:"totals"`
	Charges    []ChargeResponse   `json:"charges"`
	Payments   []PaymentResponse  `json:"payments"`
}

// NewTotalsResponse renders totals
func NewTotalsResponse(t billing.Totals) TotalsResponse {
	return TotalsResponse{
		Currency:      t.Currency,
		TotalCharges:  Money(t.TotalCharges),
		TotalPayments: Money(t.TotalPayments),
		Balance:       Money(t.Balance),
	}
}

// NewChargeResponse renders a charge without allocation figures
func NewChargeResponse(c *billing.Charge) ChargeResponse {
	return ChargeResponse{
		ID:           c.ID,
		EnrollmentID: c.EnrollmentID,
		ChargeTypeID: c.ChargeTypeID,
		TypeCode:     c.TypeCode,
		TypeName:     c.TypeName,
		Description:  c.Description,
		Amount:       Money(c.Amount),
		Currency:     c.Currency,
		Status:       string(c.Status),
		DueDate:      dateOnly(c.DueDate),
		PeriodTag:    c.PeriodTag,
		CreatedAt:    c.CreatedAt,
		CreatedBy:    c.CreatedBy,
	}
}

// NewLedgerResponse renders a ledger
func NewLedgerResponse(l *billing.Ledger) LedgerResponse {
	e := l.Enrollment
	resp := LedgerResponse{
		Enrollment: EnrollmentResponse{
			ID:              e.ID,
			PlayerID:        e.PlayerID,
			PlayerName:      e.PlayerName,
			CampusID:        e.CampusID,
			CampusName:      e.CampusName,
			CampusCode:      e.CampusCode,
			PricingPlanName: e.PricingPlanName,
			Currency:        e.Currency,
			Status:          string(e.Status),
		},
		Totals:   NewTotalsResponse(l.Totals),
		Charges:  make([]ChargeResponse, 0, len(l.Charges)),
		Payments: make([]PaymentResponse, 0, len(l.Payments)),
	}
	for i := range l.Charges {
		line := l.Charges[i]
		c := NewChargeResponse(&line.Charge)
		allocated, pending := Money(line.AllocatedAmount), Money(line.PendingAmount)
		c.AllocatedAmount, c.PendingAmount = &allocated, &pending
		resp.Charges = append(resp.Charges, c)
	}
	for _, p := range l.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:              p.ID,
			Amount:          Money(p.Amount),
			Currency:        p.Currency,
			Method:          string(p.Method),
			Status:          string(p.Status),
			PaidAt:          p.PaidAt,
			Notes:           p.Notes,
			ProviderRef:     p.ProviderRef,
			ExternalSource:  p.ExternalSource,
			AllocatedAmount: Money(p.AllocatedAmount),
		})
	}
	return resp
}

// PostPaymentRequest is the body of POST /enrollments/:id/payments
type PostPaymentRequest struct {
	Amount      string                   `json:"amount" binding:"required,money"`
	Method      string                   `json:"method" binding:"required"`
	Notes       string                   `json:"notes" binding:"max=500"`
	Allocations []AllocationEntryRequest `json:"allocations" binding:"dive"`
}

// AllocationEntryRequest is one row of the allocation form. Blank rows are
// allowed and skipped.
type AllocationEntryRequest struct {
	ChargeID string `json:"charge_id"`
	Amount   string `json:"amount"`
}

// PostPaymentResponse is returned after a successful posting
type PostPaymentResponse struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	ProviderRef string    `json:"provider_ref"`
	Amount      string    `json:"amount"`
	Allocations int       `json:"allocations"`
}

// CreateChargeRequest is the body of POST /enrollments/:id/charges
type CreateChargeRequest struct {
	ChargeTypeID string `json:"charge_type_id" binding:"required,uuid"`
	Description  string `json:"description" binding:"required,min=3,max=255"`
	Amount       string `json:"amount" binding:"required,money"`
	DueDate      string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	PeriodTag    string `json:"period_tag" binding:"max=20"`
}

// SuggestionResponse proposes how an amount could be spread
type SuggestionResponse struct {
	Strategy    string                    `json:"strategy"`
	Amount      string                    `json:"amount"`
	Allocated   string                    `json:"allocated"`
	Remaining   string                    `json:"remaining"`
	Allocations []SuggestedAllocationLine `json:"allocations"`
}

// SuggestedAllocationLine is one proposed allocation
type SuggestedAllocationLine struct {
	ChargeID      uuid.UUID `json:"charge_id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	PendingBefore string    `json:"pending_before"`
	PendingAfter  string    `json:"pending_after"`
}

// NewSuggestionResponse renders an allocation suggestion
func NewSuggestionResponse(s *billing.AllocationSuggestion) SuggestionResponse {
	resp := SuggestionResponse{
		Strategy:    s.Strategy,
		Amount:      Money(s.Amount),
		Allocated:   Money(s.Allocated),
		Remaining:   Money(s.Remaining),
		Allocations: make([]SuggestedAllocationLine, 0, len(s.Allocations)),
	}
	for _, a := range s.Allocations {
		resp.Allocations = append(resp.Allocations, SuggestedAllocationLine{
			ChargeID:      a.ChargeID,
			Description:   a.Description,
			Amount:        Money(a.Amount),
			PendingBefore: Money(a.PendingBefore),
			PendingAfter:  Money(a.PendingAfter),
		})
	}
	return resp
}

// WorklistRowResponse is one enrollment with an outstanding balance
type WorklistRowResponse struct {
	EnrollmentID uuid.UUID  `json:"enrollment_id"`
	PlayerName   string     `json:"player_name"`
	CampusName   string     `json:"campus_name"`
	CampusCode   string     `json:"campus_code"`
	TeamID       *uuid.UUID `json:"team_id"`
	TeamName     string     `json:"team_name"`
	PrimaryPhone *string    `json:"primary_phone"`
	Balance      string     `json:"balance"`
	DueDate      *string    `json:"due_date"`
	OverdueDays  int        `json:"overdue_days"`
}

// NewWorklistRows renders worklist rows
func NewWorklistRows(rows []billing.WorklistRow) []WorklistRowResponse {
	out := make([]WorklistRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, WorklistRowResponse{
			EnrollmentID: r.EnrollmentID,
			PlayerName:   r.PlayerName,
			CampusName:   r.CampusName,
			CampusCode:   r.CampusCode,
			TeamID:       r.TeamID,
			TeamName:     r.TeamName,
			PrimaryPhone: r.PrimaryPhone,
			Balance:      Money(r.Balance),
			DueDate:      dateOnly(r.DueDate),
			OverdueDays:  r.OverdueDays,
		})
	}
	return out
}

// TrendResponse is a month-over-month delta
type TrendResponse struct {
	Current  string `json:"current"`
	Previous string `json:"previous"`
	Amount   string `json:"amount"`
	Percent  string `json:"percent"`
}

func newTrendResponse(t billing.Trend) TrendResponse {
	return TrendResponse{
		Current:  Money(t.Current),
		Previous: Money(t.Previous),
		Amount:   Money(t.Amount),
		Percent:  t.Percent.StringFixed(2),
	}
}

// DashboardResponse carries the dashboard KPIs
type DashboardResponse struct {
	SelectedMonth           string        `json:"selected_month"`
	ActiveEnrollments       int64         `json:"active_enrollments"`
	PendingBalance          string        `json:"pending_balance"`
	PaymentsToday           string        `json:"payments_today"`
	PaymentsThisMonth       string        `json:"payments_this_month"`
	MonthlyPaymentsPrevious string        `json:"monthly_payments_previous"`
	MonthlyChargesThisMonth string        `json:"monthly_charges_this_month"`
	MonthlyChargesPrevious  string        `json:"monthly_charges_previous"`
	PaymentsTrend           TrendResponse `json:"payments_trend"`
	ChargesTrend            TrendResponse `json:"charges_trend"`
}

// NewDashboardResponse renders dashboard data
func NewDashboardResponse(d *billing.DashboardData) DashboardResponse {
	return DashboardResponse{
		SelectedMonth:           d.SelectedMonth,
		ActiveEnrollments:       d.ActiveEnrollments,
		PendingBalance:          Money(d.PendingBalance),
		PaymentsToday:           Money(d.PaymentsToday),
		PaymentsThisMonth:       Money(d.PaymentsThisMonth),
		MonthlyPaymentsPrevious: Money(d.MonthlyPaymentsPrevious),
		MonthlyChargesThisMonth: Money(d.MonthlyChargesThisMonth),
		MonthlyChargesPrevious:  Money(d.MonthlyChargesPrevious),
		PaymentsTrend:           newTrendResponse(d.PaymentsTrend),
		ChargesTrend:            newTrendResponse(d.ChargesTrend),
	}
}

// MethodTotalResponse is the total collected through one payment method
type MethodTotalResponse struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
	Total  string `json:"total"`
	Share  string `json:"share"`
}

func newMethodTotals(methods []billing.MethodTotal) []MethodTotalResponse {
	out := make([]MethodTotalResponse, 0, len(methods))
	for _, m := range methods {
		out = append(out, MethodTotalResponse{
			Method: string(m.Method),
			Count:  m.Count,
			Total:  Money(m.Total),
			Share:  m.Share.StringFixed(2),
		})
	}
	return out
}

// DailyCashCutResponse is the cash cut of one day
type DailyCashCutResponse struct {
	Date         string                `json:"date"`
	Methods      []MethodTotalResponse `json:"methods"`
	PaymentCount int                   `json:"payment_count"`
	GrandTotal   string                `json:"grand_total"`
	CashExpected string                `json:"cash_expected"`
}

// NewDailyCashCutResponse renders a daily cash cut
func NewDailyCashCutResponse(c *billing.DailyCashCut) DailyCashCutResponse {
	return DailyCashCutResponse{
		Date:         c.Date,
		Methods:      newMethodTotals(c.Methods),
		PaymentCount: c.PaymentCount,
		GrandTotal:   Money(c.GrandTotal),
		CashExpected: Money(c.CashExpected),
	}
}

// MonthlySummaryResponse summarizes one month
type MonthlySummaryResponse struct {
	Month          string                `json:"month"`
	ChargesTotal   string                `json:"charges_total"`
	PaymentsTotal  string                `json:"payments_total"`
	PendingBalance string                `json:"pending_balance"`
	Methods        []MethodTotalResponse `json:"methods"`
}

// NewMonthlySummaryResponse renders a monthly summary
func NewMonthlySummaryResponse(s *billing.MonthlySummary) MonthlySummaryResponse {
	return MonthlySummaryResponse{
		Month:          s.Month,
		ChargesTotal:   Money(s.ChargesTotal),
		PaymentsTotal:  Money(s.PaymentsTotal),
		PendingBalance: Money(s.PendingBalance),
		Methods:        newMethodTotals(s.Methods),
	}
}
