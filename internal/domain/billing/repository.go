package billing

import (
	"context"

	"github.com/google/uuid"
)

// EnrollmentRepository reads enrollments with their player, campus and plan
type EnrollmentRepository interface {
	// FindByID returns nil, nil when the enrollment does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)

	// FindActiveByIDs returns the active enrollments among ids, optionally
	// restricted to a campus
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID, campusID *uuid.UUID) ([]Enrollment, error)

	// CountActive counts active enrollments, optionally in one campus
	CountActive(ctx context.Context, campusID *uuid.UUID) (int64, error)
}

// ChargeRepository persists charges. Charges are never deleted.
type ChargeRepository interface {
	// FindByID returns nil, nil when the charge does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Charge, error)

	// FindByEnrollment returns every charge of an enrollment, any status
	FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]Charge, error)

	// FindDueDates returns the due dates of non-void charges that have one
	FindDueDates(ctx context.Context, enrollmentIDs []uuid.UUID) ([]DueDate, error)

	// FindCreatedBetween returns non-void charges created inside window
	FindCreatedBetween(ctx context.Context, window TimeWindow, campusID *uuid.UUID) ([]Charge, error)

	// Create inserts a single charge
	Create(ctx context.Context, charge *Charge) error

	// UpdateStatus changes the status of a single charge
	UpdateStatus(ctx context.Context, id uuid.UUID, status ChargeStatus) error
}

// ChargeTypeRepository reads the charge type catalog
type ChargeTypeRepository interface {
	// FindActive returns active charge types ordered by name
	FindActive(ctx context.Context) ([]ChargeType, error)
}

// PaymentRepository persists payments
type PaymentRepository interface {
	PaymentWriter

	// FindByEnrollment returns every payment of an enrollment, any status
	FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]Payment, error)

	// FindPostedBetween returns posted payments paid inside window
	FindPostedBetween(ctx context.Context, window TimeWindow, campusID *uuid.UUID) ([]Payment, error)
}

// AllocationRepository persists allocations. Rows are only ever inserted.
type AllocationRepository interface {
	AllocationWriter

	// FindByChargesOrPayments returns allocations referencing any of the
	// given charges or payments in one lookup
	FindByChargesOrPayments(ctx context.Context, chargeIDs, paymentIDs []uuid.UUID) ([]Allocation, error)
}

// BalanceRepository reads the running balance aggregate per enrollment
type BalanceRepository interface {
	// FindByEnrollment returns nil, nil when the enrollment has no row
	FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*Totals, error)

	// FindPositive returns every enrollment whose balance is above zero
	FindPositive(ctx context.Context) ([]Totals, error)
}

// BalanceCache holds recently computed totals. It is never authoritative.
type BalanceCache interface {
	Get(ctx context.Context, enrollmentID uuid.UUID) (*Totals, bool, error)
	Set(ctx context.Context, totals Totals) error
	Invalidate(ctx context.Context, enrollmentID uuid.UUID) error
}

// GuardianRepository reads guardian contact data
type GuardianRepository interface {
	FindContactsByPlayers(ctx context.Context, playerIDs []uuid.UUID) ([]GuardianContact, error)
}

// TeamRepository reads teams and current team assignments
type TeamRepository interface {
	// FindActive returns active teams ordered by name
	FindActive(ctx context.Context, campusID *uuid.UUID) ([]Team, error)

	// FindCurrentAssignments returns primary assignments without an end date
	FindCurrentAssignments(ctx context.Context, enrollmentIDs []uuid.UUID) ([]TeamAssignment, error)
}

// PostingLock serializes payment postings per enrollment
type PostingLock interface {
	// Acquire blocks until the enrollment is free or ctx is done. The
	// returned release func must be called exactly once.
	Acquire(ctx context.Context, enrollmentID uuid.UUID) (release func(), err error)
}
