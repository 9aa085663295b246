package persistence

import (
	"context"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGuardianRepository implements billing.GuardianRepository using GORM
type GormGuardianRepository struct {
	db *gorm.DB
}

// NewGormGuardianRepository creates a new GormGuardianRepository
func NewGormGuardianRepository(db *gorm.DB) *GormGuardianRepository {
	return &GormGuardianRepository{db: db}
}

// FindContactsByPlayers returns guardian links of the given players in
// link creation order
func (r *GormGuardianRepository) FindContactsByPlayers(ctx context.Context, playerIDs []uuid.UUID) ([]billing.GuardianContact, error) {
	if len(playerIDs) == 0 {
		return []billing.GuardianContact{}, nil
	}

	var rows []models.GuardianContactRow
	if err := r.db.WithContext(ctx).
		Table("player_guardians AS pg").
		Select("pg.player_id, pg.is_primary, g.phone_primary").
		Joins("JOIN guardians g ON g.id = pg.guardian_id").
		Where("pg.player_id IN ?", playerIDs).
		Order("pg.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	contacts := make([]billing.GuardianContact, len(rows))
	for i := range rows {
		contacts[i] = rows[i].ToDomain()
	}
	return contacts, nil
}

// GormTeamRepository implements billing.TeamRepository using GORM
type GormTeamRepository struct {
	db *gorm.DB
}

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

// FindActive returns active teams ordered by name
func (r *GormTeamRepository) FindActive(ctx context.Context, campusID *uuid.UUID) ([]billing.Team, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if campusID != nil {
		query = query.Where("campus_id = ?", *campusID)
	}

	var teamModels []models.TeamModel
	if err := query.Order("name ASC").Find(&teamModels).Error; err != nil {
		return nil, err
	}

	teams := make([]billing.Team, len(teamModels))
	for i := range teamModels {
		teams[i] = teamModels[i].ToDomain()
	}
	return teams, nil
}

// FindCurrentAssignments returns open primary assignments, oldest first
func (r *GormTeamRepository) FindCurrentAssignments(ctx context.Context, enrollmentIDs []uuid.UUID) ([]billing.TeamAssignment, error) {
	if len(enrollmentIDs) == 0 {
		return []billing.TeamAssignment{}, nil
	}

	var rows []models.TeamAssignmentRow
	if err := r.db.WithContext(ctx).
		Table("team_assignments AS ta").
		Select("ta.enrollment_id, ta.team_id, t.name AS team_name").
		Joins("LEFT JOIN teams t ON t.id = ta.team_id").
		Where("ta.enrollment_id IN ? AND ta.is_primary = ? AND ta.end_date IS NULL", enrollmentIDs, true).
		Order("ta.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	assignments := make([]billing.TeamAssignment, len(rows))
	for i := range rows {
		assignments[i] = rows[i].ToDomain()
	}
	return assignments, nil
}

var (
	_ billing.GuardianRepository = (*GormGuardianRepository)(nil)
	_ billing.TeamRepository     = (*GormTeamRepository)(nil)
)
