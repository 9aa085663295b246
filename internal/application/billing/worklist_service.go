package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorklistService lists enrollments that owe money, for collection follow-up
type WorklistService struct {
	enrollments billing.EnrollmentRepository
	charges     billing.ChargeRepository
	balances    billing.BalanceRepository
	guardians   billing.GuardianRepository
	teams       billing.TeamRepository
	checker     billing.CapabilityChecker
	location    *time.Location
	now         func() time.Time
}

// NewWorklistService creates a new WorklistService. Overdue days are counted
// in loc's calendar.
func NewWorklistService(
	enrollments billing.EnrollmentRepository,
	charges billing.ChargeRepository,
	balances billing.BalanceRepository,
	guardians billing.GuardianRepository,
	teams billing.TeamRepository,
	checker billing.CapabilityChecker,
	loc *time.Location,
	opts ...Option,
) *WorklistService {
	o := applyOptions(opts)
	return &WorklistService{
		enrollments: enrollments,
		charges:     charges,
		balances:    balances,
		guardians:   guardians,
		teams:       teams,
		checker:     checker,
		location:    loc,
		now:         o.now,
	}
}

// ListPendingEnrollments returns one page of active enrollments with a
// positive balance, filtered and ordered by urgency
func (s *WorklistService) ListPendingEnrollments(ctx context.Context, actor *billing.Actor, filter billing.WorklistFilter) (shared.Paginated[billing.WorklistRow], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "worklist", "list_pending")
	defer span.End()

	empty := shared.Paginate([]billing.WorklistRow(nil), filter.NormalizedPage(), billing.WorklistPageSize)
	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return empty, err
	}

	enrollments, balances, err := activeDebtors(ctx, s.balances, s.enrollments, filter.CampusID)
	if err != nil {
		telemetry.RecordError(span, err)
		return empty, err
	}
	if len(enrollments) == 0 {
		return empty, nil
	}

	enrollmentIDs := make([]uuid.UUID, 0, len(enrollments))
	playerIDs := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		enrollmentIDs = append(enrollmentIDs, e.ID)
		playerIDs = append(playerIDs, e.PlayerID)
	}

	guardians, err := s.guardians.FindContactsByPlayers(ctx, playerIDs)
	if err != nil {
		return empty, fmt.Errorf("failed to load guardian contacts: %w", err)
	}
	assignments, err := s.teams.FindCurrentAssignments(ctx, enrollmentIDs)
	if err != nil {
		return empty, fmt.Errorf("failed to load team assignments: %w", err)
	}
	dueDates, err := s.charges.FindDueDates(ctx, enrollmentIDs)
	if err != nil {
		return empty, fmt.Errorf("failed to load due dates: %w", err)
	}

	page := billing.BuildWorklist(billing.WorklistInput{
		Balances:    balances,
		Enrollments: enrollments,
		Guardians:   guardians,
		Teams:       assignments,
		DueDates:    dueDates,
		Today:       billing.CivilDate(s.now(), s.location),
	}, filter)
	telemetry.SetAttributes(span, "worklist_total", page.Total)
	return page, nil
}

// ListTeams returns the active teams offered as worklist filters
func (s *WorklistService) ListTeams(ctx context.Context, actor *billing.Actor, campusID *uuid.UUID) ([]billing.Team, error) {
	if err := s.checker.Require(ctx, actor, billing.CapabilityViewFinancials); err != nil {
		return nil, err
	}
	teams, err := s.teams.FindActive(ctx, campusID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	return teams, nil
}

// activeDebtors returns the active enrollments (optionally in one campus)
// whose balance is positive, with their balances keyed by enrollment id.
// No enrollment query is issued when no balance is positive.
func activeDebtors(ctx context.Context, balances billing.BalanceRepository, enrollments billing.EnrollmentRepository, campusID *uuid.UUID) ([]billing.Enrollment, map[uuid.UUID]decimal.Decimal, error) {
	positive, err := balances.FindPositive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load balances: %w", err)
	}
	if len(positive) == 0 {
		return nil, nil, nil
	}

	byEnrollment := make(map[uuid.UUID]decimal.Decimal, len(positive))
	ids := make([]uuid.UUID, 0, len(positive))
	for _, t := range positive {
		byEnrollment[t.EnrollmentID] = t.Balance
		ids = append(ids, t.EnrollmentID)
	}

	active, err := enrollments.FindActiveByIDs(ctx, ids, campusID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load enrollments: %w", err)
	}
	return active, byEnrollment, nil
}

// pendingBalance sums the positive balances of active enrollments
func pendingBalance(ctx context.Context, balances billing.BalanceRepository, enrollments billing.EnrollmentRepository, campusID *uuid.UUID) (decimal.Decimal, error) {
	active, byEnrollment, err := activeDebtors(ctx, balances, enrollments, campusID)
	if err != nil {
		return decimal.Zero, err
	}
	amounts := make([]decimal.Decimal, 0, len(active))
	for _, e := range active {
		amounts = append(amounts, byEnrollment[e.ID])
	}
	return billing.SumMoney(amounts...), nil
}
