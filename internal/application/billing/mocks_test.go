package billing

import (
	"context"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock repositories
// =============================================================================

type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID, campusID *uuid.UUID) ([]billing.Enrollment, error) {
	args := m.Called(ctx, ids, campusID)
	return args.Get(0).([]billing.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) CountActive(ctx context.Context, campusID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, campusID)
	return args.Get(0).(int64), args.Error(1)
}

type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]billing.Charge, error) {
	args := m.Called(ctx, enrollmentID)
	return args.Get(0).([]billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindDueDates(ctx context.Context, enrollmentIDs []uuid.UUID) ([]billing.DueDate, error) {
	args := m.Called(ctx, enrollmentIDs)
	return args.Get(0).([]billing.DueDate), args.Error(1)
}

func (m *MockChargeRepository) FindCreatedBetween(ctx context.Context, window billing.TimeWindow, campusID *uuid.UUID) ([]billing.Charge, error) {
	args := m.Called(ctx, window, campusID)
	return args.Get(0).([]billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) Create(ctx context.Context, charge *billing.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.ChargeStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockChargeTypeRepository struct {
	mock.Mock
}

func (m *MockChargeTypeRepository) FindActive(ctx context.Context) ([]billing.ChargeType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]billing.ChargeType), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, enrollmentID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPostedBetween(ctx context.Context, window billing.TimeWindow, campusID *uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, window, campusID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) CreateBatch(ctx context.Context, allocations []billing.Allocation) error {
	args := m.Called(ctx, allocations)
	return args.Error(0)
}

func (m *MockAllocationRepository) FindByChargesOrPayments(ctx context.Context, chargeIDs, paymentIDs []uuid.UUID) ([]billing.Allocation, error) {
	args := m.Called(ctx, chargeIDs, paymentIDs)
	return args.Get(0).([]billing.Allocation), args.Error(1)
}

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*billing.Totals, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Totals), args.Error(1)
}

func (m *MockBalanceRepository) FindPositive(ctx context.Context) ([]billing.Totals, error) {
	args := m.Called(ctx)
	return args.Get(0).([]billing.Totals), args.Error(1)
}

type MockGuardianRepository struct {
	mock.Mock
}

func (m *MockGuardianRepository) FindContactsByPlayers(ctx context.Context, playerIDs []uuid.UUID) ([]billing.GuardianContact, error) {
	args := m.Called(ctx, playerIDs)
	return args.Get(0).([]billing.GuardianContact), args.Error(1)
}

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) FindActive(ctx context.Context, campusID *uuid.UUID) ([]billing.Team, error) {
	args := m.Called(ctx, campusID)
	return args.Get(0).([]billing.Team), args.Error(1)
}

func (m *MockTeamRepository) FindCurrentAssignments(ctx context.Context, enrollmentIDs []uuid.UUID) ([]billing.TeamAssignment, error) {
	args := m.Called(ctx, enrollmentIDs)
	return args.Get(0).([]billing.TeamAssignment), args.Error(1)
}

type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, enrollmentID uuid.UUID) (*billing.Totals, bool, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*billing.Totals), args.Bool(1), args.Error(2)
}

func (m *MockBalanceCache) Set(ctx context.Context, totals billing.Totals) error {
	args := m.Called(ctx, totals)
	return args.Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, enrollmentID uuid.UUID) error {
	args := m.Called(ctx, enrollmentID)
	return args.Error(0)
}

// =============================================================================
// Stubs and fixtures
// =============================================================================

type fixedReference string

func (r fixedReference) NextReference(time.Time) string {
	return string(r)
}

type busyLock struct{}

func (busyLock) Acquire(context.Context, uuid.UUID) (func(), error) {
	return nil, billing.ErrPostingInProgress
}

type recordingMetrics struct {
	posted    int
	rejected  []string
	outcomes  []string
	compOK    []bool
	chargeNew int
}

func (r *recordingMetrics) RecordPaymentPosted(context.Context, string, string, decimal.Decimal) {
	r.posted++
}

func (r *recordingMetrics) RecordPaymentRejected(_ context.Context, code string) {
	r.rejected = append(r.rejected, code)
}

func (r *recordingMetrics) RecordCompensation(_ context.Context, ok bool) {
	r.compOK = append(r.compOK, ok)
}

func (r *recordingMetrics) RecordChargeCreated(context.Context, string) {
	r.chargeNew++
}

func (r *recordingMetrics) RecordPostingDuration(_ context.Context, _ time.Duration, outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

var fixtureNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixtureNow }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func checker() billing.CapabilityChecker {
	return auth.NewRoleCapabilityChecker(nil)
}

func staff() *billing.Actor {
	return &billing.Actor{ID: uuid.New(), Username: "caja", Roles: []string{auth.RoleAdminRestricted}}
}

func director() *billing.Actor {
	return &billing.Actor{ID: uuid.New(), Username: "direccion", Roles: []string{auth.RoleDirectorAdmin}}
}

func coach() *billing.Actor {
	return &billing.Actor{ID: uuid.New(), Username: "coach", Roles: []string{auth.RoleCoach}}
}

func newEnrollment() *billing.Enrollment {
	return &billing.Enrollment{
		ID:              uuid.New(),
		PlayerID:        uuid.New(),
		PlayerName:      "Mateo Ruiz",
		CampusID:        uuid.New(),
		CampusName:      "Norte",
		CampusCode:      "NTE",
		PricingPlanName: "Mensual",
		Currency:        "MXN",
		Status:          billing.EnrollmentStatusActive,
	}
}

func newCharge(enrollmentID uuid.UUID, amount string, createdAt time.Time) billing.Charge {
	return billing.Charge{
		BaseEntity:   shared.BaseEntity{ID: uuid.New(), CreatedAt: createdAt},
		EnrollmentID: enrollmentID,
		ChargeTypeID: uuid.New(),
		Description:  "Mensualidad marzo",
		Amount:       dec(amount),
		Currency:     "MXN",
		Status:       billing.ChargeStatusPending,
	}
}

func newPayment(enrollmentID uuid.UUID, amount string, method billing.PaymentMethod, paidAt time.Time) billing.Payment {
	return billing.Payment{
		BaseEntity:   shared.BaseEntity{ID: uuid.New(), CreatedAt: paidAt},
		EnrollmentID: enrollmentID,
		Amount:       dec(amount),
		Currency:     "MXN",
		Method:       method,
		Status:       billing.PaymentStatusPosted,
		PaidAt:       paidAt,
	}
}
