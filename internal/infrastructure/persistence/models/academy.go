package models

import (
	"strings"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// The records below are owned by the enrollment side of the academy. The
// billing service only reads them, but the models also back test fixtures.

// CampusModel is a physical training location
type CampusModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(120);not null"`
	Code     string `gorm:"type:varchar(20);not null;uniqueIndex"`
	IsActive bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CampusModel) TableName() string {
	return "campuses"
}

// PlayerModel is an enrolled athlete
type PlayerModel struct {
	BaseModel
	FirstName string `gorm:"type:varchar(100);not null"`
	LastName  string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (PlayerModel) TableName() string {
	return "players"
}

// PricingPlanModel fixes the currency an enrollment is billed in
type PricingPlanModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(120);not null"`
	Currency string `gorm:"type:varchar(3);not null;default:'MXN'"`
	IsActive bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PricingPlanModel) TableName() string {
	return "pricing_plans"
}

// EnrollmentModel links a player to a campus under a pricing plan
type EnrollmentModel struct {
	BaseModel
	PlayerID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	CampusID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	PricingPlanID *uuid.UUID               `gorm:"type:uuid"`
	Status        billing.EnrollmentStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	StartDate     time.Time                `gorm:"type:date;not null"`
	EndDate       *time.Time               `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (EnrollmentModel) TableName() string {
	return "enrollments"
}

// EnrollmentRow is an enrollment joined with the player, campus and plan
// columns the ledger header shows. Joined columns are nullable because the
// referenced rows are owned elsewhere.
type EnrollmentRow struct {
	ID              uuid.UUID
	PlayerID        uuid.UUID
	FirstName       *string
	LastName        *string
	CampusID        uuid.UUID
	CampusName      *string
	CampusCode      *string
	PricingPlanName *string
	Currency        *string
	Status          string
}

// ToDomain converts the row to a domain Enrollment, filling "-" for
// missing labels and the default currency for enrollments without a plan
func (r *EnrollmentRow) ToDomain() billing.Enrollment {
	currency := derefString(r.Currency)
	if currency == "" {
		currency = billing.DefaultCurrency
	}
	return billing.Enrollment{
		ID:              r.ID,
		PlayerID:        r.PlayerID,
		PlayerName:      strings.TrimSpace(derefString(r.FirstName) + " " + derefString(r.LastName)),
		CampusID:        r.CampusID,
		CampusName:      orDash(r.CampusName),
		CampusCode:      orDash(r.CampusCode),
		PricingPlanName: orDash(r.PricingPlanName),
		Currency:        currency,
		Status:          billing.EnrollmentStatus(r.Status),
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// GuardianModel is a parent or tutor reachable by phone
type GuardianModel struct {
	BaseModel
	FirstName    string  `gorm:"type:varchar(100);not null"`
	LastName     string  `gorm:"type:varchar(100);not null"`
	PhonePrimary *string `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (GuardianModel) TableName() string {
	return "guardians"
}

// PlayerGuardianModel links guardians to players
type PlayerGuardianModel struct {
	PlayerID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	GuardianID uuid.UUID `gorm:"type:uuid;primaryKey"`
	IsPrimary  bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlayerGuardianModel) TableName() string {
	return "player_guardians"
}

// GuardianContactRow is a guardian link joined with the guardian's phone
type GuardianContactRow struct {
	PlayerID     uuid.UUID
	IsPrimary    bool
	PhonePrimary *string
}

// ToDomain converts the row to a domain GuardianContact
func (r *GuardianContactRow) ToDomain() billing.GuardianContact {
	return billing.GuardianContact{
		PlayerID:  r.PlayerID,
		IsPrimary: r.IsPrimary,
		Phone:     strings.TrimSpace(derefString(r.PhonePrimary)),
	}
}

// TeamModel is a training group within a campus
type TeamModel struct {
	BaseModel
	CampusID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(120);not null"`
	IsActive bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TeamModel) TableName() string {
	return "teams"
}

// ToDomain converts the model to a domain Team
func (m *TeamModel) ToDomain() billing.Team {
	return billing.Team{ID: m.ID, CampusID: m.CampusID, Name: m.Name}
}

// TeamAssignmentModel places an enrollment on a team for a period
type TeamAssignmentModel struct {
	BaseModel
	EnrollmentID uuid.UUID  `gorm:"type:uuid;not null;index"`
	TeamID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	IsPrimary    bool       `gorm:"not null"`
	StartDate    time.Time  `gorm:"type:date;not null"`
	EndDate      *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (TeamAssignmentModel) TableName() string {
	return "team_assignments"
}

// TeamAssignmentRow is an assignment joined with its team name
type TeamAssignmentRow struct {
	EnrollmentID uuid.UUID
	TeamID       uuid.UUID
	TeamName     *string
}

// ToDomain converts the row to a domain TeamAssignment
func (r *TeamAssignmentRow) ToDomain() billing.TeamAssignment {
	return billing.TeamAssignment{
		EnrollmentID: r.EnrollmentID,
		TeamID:       r.TeamID,
		TeamName:     orDash(r.TeamName),
	}
}

// All lists every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CampusModel{},
		&PlayerModel{},
		&PricingPlanModel{},
		&EnrollmentModel{},
		&ChargeTypeModel{},
		&ChargeModel{},
		&PaymentModel{},
		&AllocationModel{},
		&GuardianModel{},
		&PlayerGuardianModel{},
		&TeamModel{},
		&TeamAssignmentModel{},
	}
}
