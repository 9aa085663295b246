package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/telemetry"
)

// ReportService builds the daily cash cut and the monthly close
type ReportService struct {
	enrollments billing.EnrollmentRepository
	charges     billing.ChargeRepository
	payments    billing.PaymentRepository
	balances    billing.BalanceRepository
	checker     billing.CapabilityChecker
	location    *time.Location
	now         func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	enrollments billing.EnrollmentRepository,
	charges billing.ChargeRepository,
	payments billing.PaymentRepository,
	balances billing.BalanceRepository,
	checker billing.CapabilityChecker,
	loc *time.Location,
	opts ...Option,
) *ReportService {
	o := applyOptions(opts)
	return &ReportService{
		enrollments: enrollments,
		charges:     charges,
		payments:    payments,
		balances:    balances,
		checker:     checker,
		location:    loc,
		now:         o.now,
	}
}

// DailyCashCut groups the payments posted on one calendar day by method.
// An empty date means today.
func (s *ReportService) DailyCashCut(ctx context.Context, actor *billing.Actor, q DailyCutQuery) (*billing.DailyCashCut, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "daily_cash_cut")
	defer span.End()

	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return nil, err
	}

	day := s.now().In(s.location)
	if raw := strings.TrimSpace(q.Date); raw != "" {
		parsed, err := billing.ParseDate(raw)
		if err != nil {
			return nil, billing.ErrInvalidForm
		}
		day = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, s.location)
	}

	window := billing.DayWindow(day, s.location)
	payments, err := s.payments.FindPostedBetween(ctx, window, q.CampusID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	cut := billing.BuildDailyCashCut(window.Start, payments)
	return &cut, nil
}

// MonthlySummary totals the month's charges and payments, the current
// pending balance and the payment method distribution
func (s *ReportService) MonthlySummary(ctx context.Context, actor *billing.Actor, q MonthlySummaryQuery) (*billing.MonthlySummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "monthly_summary")
	defer span.End()

	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return nil, err
	}

	month := billing.ResolveMonth(q.Month, s.now(), s.location)
	window := month.Window(s.location)

	chargesTotal, err := sumCharges(ctx, s.charges, window, q.CampusID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payments, err := s.payments.FindPostedBetween(ctx, window, q.CampusID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	pending, err := pendingBalance(ctx, s.balances, s.enrollments, q.CampusID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	methods, paymentsTotal := billing.SummarizeByMethod(payments)
	return &billing.MonthlySummary{
		Month:          month.String(),
		ChargesTotal:   chargesTotal,
		PaymentsTotal:  paymentsTotal,
		PendingBalance: pending,
		Methods:        methods,
	}, nil
}
