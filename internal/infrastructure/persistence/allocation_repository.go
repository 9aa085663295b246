package persistence

import (
	"context"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRepository implements billing.AllocationRepository using GORM
type GormAllocationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db, now: time.Now}
}

// CreateBatch writes all allocations with one multi-row INSERT, so either
// every row lands or none does
func (r *GormAllocationRepository) CreateBatch(ctx context.Context, allocations []billing.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}

	now := r.now()
	rows := make([]models.AllocationModel, len(allocations))
	for i, a := range allocations {
		rows[i].FromDomain(a, now)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByChargesOrPayments returns allocations referencing any of the given
// charges or payments
func (r *GormAllocationRepository) FindByChargesOrPayments(ctx context.Context, chargeIDs, paymentIDs []uuid.UUID) ([]billing.Allocation, error) {
	query := r.db.WithContext(ctx).Model(&models.AllocationModel{})
	switch {
	case len(chargeIDs) > 0 && len(paymentIDs) > 0:
		query = query.Where("charge_id IN ? OR payment_id IN ?", chargeIDs, paymentIDs)
	case len(chargeIDs) > 0:
		query = query.Where("charge_id IN ?", chargeIDs)
	case len(paymentIDs) > 0:
		query = query.Where("payment_id IN ?", paymentIDs)
	default:
		return []billing.Allocation{}, nil
	}

	var rows []models.AllocationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	allocations := make([]billing.Allocation, len(rows))
	for i := range rows {
		allocations[i] = rows[i].ToDomain()
	}
	return allocations, nil
}

var _ billing.AllocationRepository = (*GormAllocationRepository)(nil)
