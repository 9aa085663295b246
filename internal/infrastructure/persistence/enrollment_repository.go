package persistence

import (
	"context"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEnrollmentRepository implements billing.EnrollmentRepository using GORM
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewGormEnrollmentRepository creates a new GormEnrollmentRepository
func NewGormEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

func (r *GormEnrollmentRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("enrollments AS e").
		Select(`e.id, e.player_id, e.campus_id, e.status,
			pl.first_name, pl.last_name,
			c.name AS campus_name, c.code AS campus_code,
			pp.name AS pricing_plan_name, pp.currency`).
		Joins("LEFT JOIN players pl ON pl.id = e.player_id").
		Joins("LEFT JOIN campuses c ON c.id = e.campus_id").
		Joins("LEFT JOIN pricing_plans pp ON pp.id = e.pricing_plan_id")
}

// FindByID returns the enrollment summary, or nil when it does not exist
func (r *GormEnrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Enrollment, error) {
	var rows []models.EnrollmentRow
	if err := r.summaryQuery(ctx).Where("e.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	enrollment := rows[0].ToDomain()
	return &enrollment, nil
}

// FindActiveByIDs returns the active enrollments among ids
func (r *GormEnrollmentRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID, campusID *uuid.UUID) ([]billing.Enrollment, error) {
	if len(ids) == 0 {
		return []billing.Enrollment{}, nil
	}

	query := r.summaryQuery(ctx).
		Where("e.id IN ? AND e.status = ?", ids, billing.EnrollmentStatusActive)
	if campusID != nil {
		query = query.Where("e.campus_id = ?", *campusID)
	}

	var rows []models.EnrollmentRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]billing.Enrollment, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

// CountActive counts active enrollments, optionally in one campus
func (r *GormEnrollmentRepository) CountActive(ctx context.Context, campusID *uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.EnrollmentModel{}).
		Where("status = ?", billing.EnrollmentStatusActive)
	if campusID != nil {
		query = query.Where("campus_id = ?", *campusID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ billing.EnrollmentRepository = (*GormEnrollmentRepository)(nil)
