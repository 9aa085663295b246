package billing

import (
	"context"
	"fmt"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService assembles the read model of an enrollment's account
type LedgerService struct {
	enrollments billing.EnrollmentRepository
	charges     billing.ChargeRepository
	payments    billing.PaymentRepository
	allocations billing.AllocationRepository
	balances    billing.BalanceRepository
	cache       billing.BalanceCache
	checker     billing.CapabilityChecker
	strategy    billing.AllocationStrategy
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	enrollments billing.EnrollmentRepository,
	charges billing.ChargeRepository,
	payments billing.PaymentRepository,
	allocations billing.AllocationRepository,
	balances billing.BalanceRepository,
	cache billing.BalanceCache,
	checker billing.CapabilityChecker,
) *LedgerService {
	return &LedgerService{
		enrollments: enrollments,
		charges:     charges,
		payments:    payments,
		allocations: allocations,
		balances:    balances,
		cache:       cache,
		checker:     checker,
		strategy:    billing.NewFIFOAllocationStrategy(),
	}
}

// GetEnrollmentLedger returns the enrollment summary, totals and every
// charge and payment with their allocation state
func (s *LedgerService) GetEnrollmentLedger(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID) (*billing.Ledger, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_enrollment_ledger")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrEnrollmentID, enrollmentID.String())

	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return nil, err
	}

	ledger, err := s.load(ctx, enrollmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return ledger, nil
}

// SuggestAllocations proposes how amount could be spread over the open
// charges, earliest due date first. Nothing is written.
func (s *LedgerService) SuggestAllocations(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, rawAmount string) (*billing.AllocationSuggestion, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "suggest_allocations")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrEnrollmentID, enrollmentID.String())

	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return nil, err
	}
	amount, err := billing.ParseMoney(rawAmount)
	if err != nil || !amount.IsPositive() {
		return nil, billing.ErrInvalidForm
	}

	ledger, err := s.load(ctx, enrollmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	suggestion := s.strategy.Suggest(amount, ledger.Charges)
	telemetry.SetAttributes(span, telemetry.SpanAttrAllocations, len(suggestion.Allocations))
	return &suggestion, nil
}

// load reads the ledger without any capability check. It is shared with the
// posting transaction, which authorizes on its own capability.
func (s *LedgerService) load(ctx context.Context, enrollmentID uuid.UUID) (*billing.Ledger, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, billing.ErrEnrollmentNotFound
	}

	charges, err := s.charges.FindByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load charges: %w", err)
	}
	payments, err := s.payments.FindByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	var allocations []billing.Allocation
	if len(charges) > 0 || len(payments) > 0 {
		allocations, err = s.allocations.FindByChargesOrPayments(ctx, billing.ChargeIDs(charges), billing.PaymentIDs(payments))
		if err != nil {
			return nil, fmt.Errorf("failed to load allocations: %w", err)
		}
	}

	computed := billing.ComputeTotals(enrollmentID, charges, payments)
	totals := s.reconcile(ctx, enrollmentID, computed)
	return billing.BuildLedger(*enrollment, totals, charges, payments, allocations), nil
}

// reconcile returns the totals of the balance source, or the computed totals
// when the source is unavailable or disagrees with the raw records.
func (s *LedgerService) reconcile(ctx context.Context, enrollmentID uuid.UUID, computed billing.Totals) billing.Totals {
	log := logger.L(ctx).With(zap.String("enrollment_id", enrollmentID.String()))

	source, err := s.sourceTotals(ctx, enrollmentID)
	if err != nil {
		log.Warn("balance source unavailable, using computed totals", zap.Error(err))
		return computed
	}
	if source.Agrees(computed) {
		return *source
	}

	log.Warn("balance source disagrees with ledger records",
		zap.String("source_balance", source.Balance.String()),
		zap.String("computed_balance", computed.Balance.String()),
	)
	if err := s.cache.Invalidate(ctx, enrollmentID); err != nil {
		log.Warn("failed to invalidate cached balance", zap.Error(err))
	}
	return computed
}

// sourceTotals reads through the cache into the balance view. An enrollment
// without a view row has zero totals.
func (s *LedgerService) sourceTotals(ctx context.Context, enrollmentID uuid.UUID) (*billing.Totals, error) {
	cached, ok, err := s.cache.Get(ctx, enrollmentID)
	if err != nil {
		logger.L(ctx).Warn("balance cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	totals, err := s.balances.FindByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = &billing.Totals{
			EnrollmentID:  enrollmentID,
			TotalCharges:  decimal.Zero,
			TotalPayments: decimal.Zero,
			Balance:       decimal.Zero,
		}
	}
	if err := s.cache.Set(ctx, *totals); err != nil {
		logger.L(ctx).Warn("balance cache write failed", zap.Error(err))
	}
	return totals, nil
}
