package billing

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus is the membership status of an enrollment
type EnrollmentStatus string

const (
	EnrollmentStatusActive   EnrollmentStatus = "active"
	EnrollmentStatusInactive EnrollmentStatus = "inactive"
)

// Enrollment is the read-only view of a player's membership at a campus.
// It is the aggregation key for every ledger computation.
type Enrollment struct {
	ID              uuid.UUID        `json:"id"`
	PlayerID        uuid.UUID        `json:"player_id"`
	PlayerName      string           `json:"player_name"`
	CampusID        uuid.UUID        `json:"campus_id"`
	CampusName      string           `json:"campus_name"`
	CampusCode      string           `json:"campus_code"`
	PricingPlanName string           `json:"pricing_plan_name"`
	Currency        string           `json:"currency"`
	Status          EnrollmentStatus `json:"status"`
}

// IsActive returns true if the enrollment is currently active
func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}

// Team is an active squad players can be assigned to
type Team struct {
	ID       uuid.UUID `json:"id"`
	CampusID uuid.UUID `json:"campus_id"`
	Name     string    `json:"name"`
}

// GuardianContact links a guardian phone to a player
type GuardianContact struct {
	PlayerID  uuid.UUID `json:"player_id"`
	IsPrimary bool      `json:"is_primary"`
	Phone     string    `json:"phone"`
}

// TeamAssignment is an enrollment's current, primary team membership
type TeamAssignment struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	TeamID       uuid.UUID `json:"team_id"`
	TeamName     string    `json:"team_name"`
}

// DueDate is the due date of a non-void charge of an enrollment
type DueDate struct {
	EnrollmentID uuid.UUID
	DueDate      time.Time
}
