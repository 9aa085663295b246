package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardService computes the billing KPIs of the home dashboard
type DashboardService struct {
	enrollments billing.EnrollmentRepository
	charges     billing.ChargeRepository
	payments    billing.PaymentRepository
	balances    billing.BalanceRepository
	checker     billing.CapabilityChecker
	location    *time.Location
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService. Day and month windows
// are computed in loc.
func NewDashboardService(
	enrollments billing.EnrollmentRepository,
	charges billing.ChargeRepository,
	payments billing.PaymentRepository,
	balances billing.BalanceRepository,
	checker billing.CapabilityChecker,
	loc *time.Location,
	opts ...Option,
) *DashboardService {
	o := applyOptions(opts)
	return &DashboardService{
		enrollments: enrollments,
		charges:     charges,
		payments:    payments,
		balances:    balances,
		checker:     checker,
		location:    loc,
		now:         o.now,
	}
}

// GetDashboardData returns the KPIs for the selected month, falling back to
// the current month when the query month is missing or malformed
func (s *DashboardService) GetDashboardData(ctx context.Context, actor *billing.Actor, q DashboardQuery) (*billing.DashboardData, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "get")
	defer span.End()
	if q.CampusID != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrCampusID, q.CampusID.String())
	}

	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return nil, err
	}

	now := s.now()
	month := billing.ResolveMonth(q.Month, now, s.location)
	today := billing.DayWindow(now, s.location)
	current := month.Window(s.location)
	previous := month.Previous().Window(s.location)

	active, err := s.enrollments.CountActive(ctx, q.CampusID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	pending, err := pendingBalance(ctx, s.balances, s.enrollments, q.CampusID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	paymentsToday, err := s.paymentsIn(ctx, today, q.CampusID)
	if err != nil {
		return nil, err
	}
	paymentsMonth, err := s.paymentsIn(ctx, current, q.CampusID)
	if err != nil {
		return nil, err
	}
	paymentsPrevious, err := s.paymentsIn(ctx, previous, q.CampusID)
	if err != nil {
		return nil, err
	}
	chargesMonth, err := s.chargesIn(ctx, current, q.CampusID)
	if err != nil {
		return nil, err
	}
	chargesPrevious, err := s.chargesIn(ctx, previous, q.CampusID)
	if err != nil {
		return nil, err
	}

	return &billing.DashboardData{
		SelectedMonth:           month.String(),
		ActiveEnrollments:       active,
		PendingBalance:          pending,
		PaymentsToday:           paymentsToday,
		PaymentsThisMonth:       paymentsMonth,
		MonthlyPaymentsPrevious: paymentsPrevious,
		MonthlyChargesThisMonth: chargesMonth,
		MonthlyChargesPrevious:  chargesPrevious,
		PaymentsTrend:           billing.ComputeTrend(paymentsMonth, paymentsPrevious),
		ChargesTrend:            billing.ComputeTrend(chargesMonth, chargesPrevious),
	}, nil
}

func (s *DashboardService) paymentsIn(ctx context.Context, window billing.TimeWindow, campusID *uuid.UUID) (decimal.Decimal, error) {
	return sumPostedPayments(ctx, s.payments, window, campusID)
}

func (s *DashboardService) chargesIn(ctx context.Context, window billing.TimeWindow, campusID *uuid.UUID) (decimal.Decimal, error) {
	return sumCharges(ctx, s.charges, window, campusID)
}

func sumPostedPayments(ctx context.Context, payments billing.PaymentRepository, window billing.TimeWindow, campusID *uuid.UUID) (decimal.Decimal, error) {
	rows, err := payments.FindPostedBetween(ctx, window, campusID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load payments: %w", err)
	}
	amounts := make([]decimal.Decimal, 0, len(rows))
	for i := range rows {
		if rows[i].IsPosted() {
			amounts = append(amounts, rows[i].Amount)
		}
	}
	return billing.SumMoney(amounts...), nil
}

func sumCharges(ctx context.Context, charges billing.ChargeRepository, window billing.TimeWindow, campusID *uuid.UUID) (decimal.Decimal, error) {
	rows, err := charges.FindCreatedBetween(ctx, window, campusID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load charges: %w", err)
	}
	amounts := make([]decimal.Decimal, 0, len(rows))
	for i := range rows {
		if !rows[i].IsVoid() {
			amounts = append(amounts, rows[i].Amount)
		}
	}
	return billing.SumMoney(amounts...), nil
}
