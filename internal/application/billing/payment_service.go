package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records staff payments and their allocations
type PaymentService struct {
	ledger      *LedgerService
	payments    billing.PaymentRepository
	allocations billing.AllocationRepository
	cache       billing.BalanceCache
	lock        billing.PostingLock
	references  billing.ReferenceGenerator
	checker     billing.CapabilityChecker
	metrics     Metrics
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	ledger *LedgerService,
	payments billing.PaymentRepository,
	allocations billing.AllocationRepository,
	cache billing.BalanceCache,
	lock billing.PostingLock,
	references billing.ReferenceGenerator,
	checker billing.CapabilityChecker,
	opts ...Option,
) *PaymentService {
	o := applyOptions(opts)
	return &PaymentService{
		ledger:      ledger,
		payments:    payments,
		allocations: allocations,
		cache:       cache,
		lock:        lock,
		references:  references,
		checker:     checker,
		metrics:     o.metrics,
		now:         o.now,
	}
}

// PostPayment records a posted payment for an enrollment and applies it to
// pending charges. Every failure is a rejection carrying one of the billing
// codes; no partial payment survives a failed posting unless the
// compensating delete itself fails, which is logged with the payment id.
func (s *PaymentService) PostPayment(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, form PostPaymentRequest) (*PostPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "post")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrEnrollmentID, enrollmentID.String(),
		telemetry.SpanAttrMethod, form.Method,
	)

	start := time.Now()
	log := logger.L(ctx).With(zap.String("enrollment_id", enrollmentID.String()))

	result, plan, err := s.post(ctx, actor, enrollmentID, form)
	if err != nil {
		code := shared.CodeOf(err)
		telemetry.SetAttributes(span, telemetry.SpanAttrRejection, code)
		telemetry.RecordError(span, err)
		s.metrics.RecordPaymentRejected(ctx, code)

		outcome := telemetry.OutcomeRejected
		var failure *billing.PostingFailure
		if errors.As(err, &failure) && failure.PaymentID != uuid.Nil {
			s.metrics.RecordCompensation(ctx, !failure.Orphaned())
			outcome = telemetry.OutcomeCompensated
			if failure.Orphaned() {
				outcome = telemetry.OutcomeOrphaned
				log.Error("payment left without allocations, compensating delete failed",
					zap.String("payment_id", failure.PaymentID.String()),
					zap.NamedError("cause", failure.Cause),
					zap.NamedError("compensation_error", failure.CompensationErr),
				)
			} else {
				log.Warn("allocation insert failed, payment rolled back",
					zap.String("payment_id", failure.PaymentID.String()),
					zap.Error(failure.Cause),
				)
			}
		} else if failure != nil {
			log.Warn("payment insert failed", zap.Error(failure.Cause))
		} else {
			log.Info("payment rejected", zap.String("code", code), zap.Error(err))
		}
		s.metrics.RecordPostingDuration(ctx, time.Since(start), outcome)
		return nil, rejection(err)
	}

	payment := plan.Payment()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrAmount, payment.Amount.String(),
		telemetry.SpanAttrAllocations, len(plan.Allocations()),
	)
	s.metrics.RecordPaymentPosted(ctx, payment.Method.String(), payment.Currency, payment.Amount)
	s.metrics.RecordPostingDuration(ctx, time.Since(start), telemetry.OutcomePosted)
	log.Info("payment posted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(billing.MoneyScale)),
		zap.String("method", payment.Method.String()),
		zap.Int("allocations", len(plan.Allocations())),
	)
	return result, nil
}

func (s *PaymentService) post(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, form PostPaymentRequest) (*PostPaymentResult, *billing.PostingPlan, error) {
	req, err := form.ToDomain()
	if err != nil {
		return nil, nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.checker.Require(ctx, actor, billing.CapabilityPostPayment); err != nil {
		return nil, nil, err
	}

	release, err := s.lock.Acquire(ctx, enrollmentID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	ledger, err := s.ledger.load(ctx, enrollmentID)
	if err != nil {
		return nil, nil, err
	}

	selected, err := billing.SelectAllocations(ledger, req.Amount, req.NormalizedAllocations())
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	payment := billing.NewManualPayment(&ledger.Enrollment, req, actor.ID, s.references.NextReference(now), now)
	plan := billing.NewPostingPlan(payment)
	for _, a := range selected {
		plan.Allocate(a.ChargeID, a.Amount)
	}
	if err := plan.Commit(ctx, s.payments, s.allocations); err != nil {
		return nil, nil, err
	}

	if err := s.cache.Invalidate(ctx, enrollmentID); err != nil {
		logger.L(ctx).Warn("failed to invalidate cached balance",
			zap.String("enrollment_id", enrollmentID.String()),
			zap.Error(err),
		)
	}
	plan.MarkCommitted()

	return &PostPaymentResult{
		PaymentID:   payment.ID,
		ProviderRef: payment.ProviderRef,
		Amount:      payment.Amount,
		Allocations: len(plan.Allocations()),
	}, plan, nil
}

// rejection maps a posting error onto the domain error callers render.
// Store failures outside the plan keep their cause wrapped.
func rejection(err error) error {
	var failure *billing.PostingFailure
	if errors.As(err, &failure) {
		return failure.Rejection
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("post payment: %w", err)
}
