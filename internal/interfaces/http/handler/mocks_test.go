package handler

import (
	"context"

	billingapp "github.com/academy/backend/internal/application/billing"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLedgerQueries struct {
	mock.Mock
}

func (m *MockLedgerQueries) GetEnrollmentLedger(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID) (*billing.Ledger, error) {
	args := m.Called(ctx, actor, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Ledger), args.Error(1)
}

func (m *MockLedgerQueries) SuggestAllocations(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, rawAmount string) (*billing.AllocationSuggestion, error) {
	args := m.Called(ctx, actor, enrollmentID, rawAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.AllocationSuggestion), args.Error(1)
}

type MockPaymentPoster struct {
	mock.Mock
}

func (m *MockPaymentPoster) PostPayment(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, form billingapp.PostPaymentRequest) (*billingapp.PostPaymentResult, error) {
	args := m.Called(ctx, actor, enrollmentID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.PostPaymentResult), args.Error(1)
}

type MockChargeCommands struct {
	mock.Mock
}

func (m *MockChargeCommands) CreateCharge(ctx context.Context, actor *billing.Actor, enrollmentID uuid.UUID, form billingapp.CreateChargeRequest) (*billing.Charge, error) {
	args := m.Called(ctx, actor, enrollmentID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeCommands) VoidCharge(ctx context.Context, actor *billing.Actor, chargeID uuid.UUID) (*billing.Charge, error) {
	args := m.Called(ctx, actor, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeCommands) ListChargeTypes(ctx context.Context, actor *billing.Actor) ([]billing.ChargeType, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.ChargeType), args.Error(1)
}

type MockWorklistQueries struct {
	mock.Mock
}

func (m *MockWorklistQueries) ListPendingEnrollments(ctx context.Context, actor *billing.Actor, filter billing.WorklistFilter) (shared.Paginated[billing.WorklistRow], error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).(shared.Paginated[billing.WorklistRow]), args.Error(1)
}

func (m *MockWorklistQueries) ListTeams(ctx context.Context, actor *billing.Actor, campusID *uuid.UUID) ([]billing.Team, error) {
	args := m.Called(ctx, actor, campusID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Team), args.Error(1)
}

type MockDashboardQueries struct {
	mock.Mock
}

func (m *MockDashboardQueries) GetDashboardData(ctx context.Context, actor *billing.Actor, q billingapp.DashboardQuery) (*billing.DashboardData, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.DashboardData), args.Error(1)
}

type MockReportQueries struct {
	mock.Mock
}

func (m *MockReportQueries) DailyCashCut(ctx context.Context, actor *billing.Actor, q billingapp.DailyCutQuery) (*billing.DailyCashCut, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.DailyCashCut), args.Error(1)
}

func (m *MockReportQueries) MonthlySummary(ctx context.Context, actor *billing.Actor, q billingapp.MonthlySummaryQuery) (*billing.MonthlySummary, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.MonthlySummary), args.Error(1)
}
