package persistence

import (
	"context"
	"fmt"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChargeRepository implements billing.ChargeRepository using GORM
type GormChargeRepository struct {
	db *gorm.DB
}

// NewGormChargeRepository creates a new GormChargeRepository
func NewGormChargeRepository(db *gorm.DB) *GormChargeRepository {
	return &GormChargeRepository{db: db}
}

func (r *GormChargeRepository) withType(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("charges").
		Select("charges.*, ct.code AS type_code, ct.name AS type_name").
		Joins("LEFT JOIN charge_types ct ON ct.id = charges.charge_type_id")
}

// FindByID finds a charge by ID, or nil when it does not exist
func (r *GormChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Charge, error) {
	var rows []models.ChargeWithTypeRow
	if err := r.withType(ctx).Where("charges.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	charge := rows[0].ToDomain()
	return &charge, nil
}

// FindByEnrollment returns every charge of an enrollment, newest first
func (r *GormChargeRepository) FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]billing.Charge, error) {
	var rows []models.ChargeWithTypeRow
	if err := r.withType(ctx).
		Where("charges.enrollment_id = ?", enrollmentID).
		Order("charges.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	charges := make([]billing.Charge, len(rows))
	for i := range rows {
		charges[i] = rows[i].ToDomain()
	}
	return charges, nil
}

// FindDueDates returns the due dates of non-void charges that have one
func (r *GormChargeRepository) FindDueDates(ctx context.Context, enrollmentIDs []uuid.UUID) ([]billing.DueDate, error) {
	if len(enrollmentIDs) == 0 {
		return []billing.DueDate{}, nil
	}

	var rows []billing.DueDate
	if err := r.db.WithContext(ctx).
		Model(&models.ChargeModel{}).
		Select("enrollment_id, due_date").
		Where("enrollment_id IN ? AND status <> ? AND due_date IS NOT NULL", enrollmentIDs, billing.ChargeStatusVoid).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCreatedBetween returns non-void charges created inside window
func (r *GormChargeRepository) FindCreatedBetween(ctx context.Context, window billing.TimeWindow, campusID *uuid.UUID) ([]billing.Charge, error) {
	var chargeModels []models.ChargeModel
	if err := r.db.WithContext(ctx).
		Scopes(campusScope("enrollment_id", campusID)).
		Where("status <> ? AND created_at >= ? AND created_at < ?",
			billing.ChargeStatusVoid, window.Start.UTC(), window.End.UTC()).
		Find(&chargeModels).Error; err != nil {
		return nil, err
	}

	charges := make([]billing.Charge, len(chargeModels))
	for i := range chargeModels {
		charges[i] = *chargeModels[i].ToDomain()
	}
	return charges, nil
}

// Create inserts a single charge
func (r *GormChargeRepository) Create(ctx context.Context, charge *billing.Charge) error {
	model := &models.ChargeModel{}
	model.FromDomain(charge)
	return r.db.WithContext(ctx).Create(model).Error
}

// UpdateStatus changes the status of a single charge
func (r *GormChargeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.ChargeStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.ChargeModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("charge %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

// GormChargeTypeRepository implements billing.ChargeTypeRepository using GORM
type GormChargeTypeRepository struct {
	db *gorm.DB
}

// NewGormChargeTypeRepository creates a new GormChargeTypeRepository
func NewGormChargeTypeRepository(db *gorm.DB) *GormChargeTypeRepository {
	return &GormChargeTypeRepository{db: db}
}

// FindActive returns active charge types ordered by name
func (r *GormChargeTypeRepository) FindActive(ctx context.Context) ([]billing.ChargeType, error) {
	var typeModels []models.ChargeTypeModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&typeModels).Error; err != nil {
		return nil, err
	}

	types := make([]billing.ChargeType, len(typeModels))
	for i := range typeModels {
		types[i] = typeModels[i].ToDomain()
	}
	return types, nil
}

var (
	_ billing.ChargeRepository     = (*GormChargeRepository)(nil)
	_ billing.ChargeTypeRepository = (*GormChargeTypeRepository)(nil)
)
