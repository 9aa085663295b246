package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChargeService creates and voids charges
type ChargeService struct {
	enrollments billing.EnrollmentRepository
	charges     billing.ChargeRepository
	chargeTypes billing.ChargeTypeRepository
	cache       billing.BalanceCache
	checker     billing.CapabilityChecker
	metrics     Metrics
	now         func() time.Time
}

// NewChargeService creates a new ChargeService
func NewChargeService(
	enrollments billing.EnrollmentRepository,
	charges billing.ChargeRepository,
	chargeTypes billing.ChargeTypeRepository,
	cache billing.BalanceCache,
	checker billing.CapabilityChecker,
	opts ...Option,
) *ChargeService {
	o := applyOptions(opts)
	return &ChargeService{
		enrollments: enrollments,
		charges:     charges,
		chargeTypes: chargeTypes,
		cache:       cache,
		checker:     checker,
		metrics:     o.metrics,
		now:         o.now,
	}
}

// CreateCharge adds a pending charge to an enrollment in the enrollment's
// currency
func (s *ChargeService) CreateCharge(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, form CreateChargeRequest) (*billing.Charge, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrEnrollmentID, enrollmentID.String())

	in, err := form.ToDomain()
	if err != nil {
		return nil, err
	}
	if err := s.checker.Require(ctx, actor, billing.CapabilityCreateCharge); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, billing.ErrEnrollmentNotFound
	}

	if err := s.requireActiveType(ctx, in.ChargeTypeID); err != nil {
		return nil, err
	}

	charge, err := billing.NewCharge(enrollment, in, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.charges.Create(ctx, charge); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("charge insert failed",
			zap.String("enrollment_id", enrollmentID.String()),
			zap.Error(err),
		)
		return nil, billing.ErrInsertFailed
	}

	s.invalidate(ctx, enrollmentID)
	s.metrics.RecordChargeCreated(ctx, charge.Currency)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChargeID, charge.ID.String(),
		telemetry.SpanAttrAmount, charge.Amount.String(),
	)
	logger.L(ctx).Info("charge created",
		zap.String("charge_id", charge.ID.String()),
		zap.String("enrollment_id", enrollmentID.String()),
		zap.String("amount", charge.Amount.StringFixed(billing.MoneyScale)),
	)
	return charge, nil
}

// VoidCharge marks a charge void. Allocations already applied to it stay in
// place.
func (s *ChargeService) VoidCharge(ctx context.Context, actor *billing.Actor, chargeID uuid.UUID) (*billing.Charge, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "void")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrChargeID, chargeID.String())

	if err := s.checker.Require(ctx, actor, billing.CapabilityManageAll); err != nil {
		return nil, err
	}

	charge, err := s.charges.FindByID(ctx, chargeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load charge: %w", err)
	}
	if charge == nil {
		return nil, billing.ErrChargeNotFound
	}
	if err := charge.Void(); err != nil {
		return nil, err
	}
	if err := s.charges.UpdateStatus(ctx, charge.ID, charge.Status); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("charge void failed", zap.String("charge_id", chargeID.String()), zap.Error(err))
		return nil, billing.ErrUpdateFailed
	}

	s.invalidate(ctx, charge.EnrollmentID)
	logger.L(ctx).Info("charge voided",
		zap.String("charge_id", chargeID.String()),
		zap.String("enrollment_id", charge.EnrollmentID.String()),
	)
	return charge, nil
}

// ListChargeTypes returns the active charge types offered on the charge form
func (s *ChargeService) ListChargeTypes(ctx context.Context, actor *billing.Actor) ([]billing.ChargeType, error) {
	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return nil, err
	}
	types, err := s.chargeTypes.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge types: %w", err)
	}
	return types, nil
}

func (s *ChargeService) requireActiveType(ctx context.Context, id uuid.UUID) error {
	types, err := s.chargeTypes.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load charge types: %w", err)
	}
	for _, t := range types {
		if t.ID == id {
			return nil
		}
	}
	return billing.ErrInvalidChargeType
}

func (s *ChargeService) invalidate(ctx context.Context, enrollmentID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, enrollmentID); err != nil {
		logger.L(ctx).Warn("failed to invalidate cached balance",
			zap.String("enrollment_id", enrollmentID.String()),
			zap.Error(err),
		)
	}
}
