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

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a single payment row
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	model := &models.PaymentModel{}
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Create(model).Error
}

// Delete removes a payment row. It is only used to compensate a posting
// whose allocations could not be written.
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payment %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

// FindByEnrollment returns every payment of an enrollment, latest paid first
func (r *GormPaymentRepository) FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("paid_at DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toPayments(paymentModels), nil
}

// FindPostedBetween returns posted payments paid inside window
func (r *GormPaymentRepository) FindPostedBetween(ctx context.Context, window billing.TimeWindow, campusID *uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(campusScope("enrollment_id", campusID)).
		Where("status = ? AND paid_at >= ? AND paid_at < ?",
			billing.PaymentStatusPosted, window.Start.UTC(), window.End.UTC()).
		Order("paid_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toPayments(paymentModels), nil
}

func toPayments(paymentModels []models.PaymentModel) []billing.Payment {
	payments := make([]billing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
