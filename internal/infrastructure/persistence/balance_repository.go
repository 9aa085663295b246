package persistence

import (
	"context"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBalanceRepository reads v_enrollment_balances
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// FindByEnrollment returns the view row of one enrollment, or nil
func (r *GormBalanceRepository) FindByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*billing.Totals, error) {
	var rows []models.BalanceRow
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	totals := rows[0].ToDomain()
	return &totals, nil
}

// FindPositive returns every enrollment that still owes money
func (r *GormBalanceRepository) FindPositive(ctx context.Context) ([]billing.Totals, error) {
	var rows []models.BalanceRow
	if err := r.db.WithContext(ctx).
		Where("balance > 0").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]billing.Totals, 0, len(rows))
	for i := range rows {
		t := rows[i].ToDomain()
		// float sums on SQLite can leave a sub-cent residue above zero
		if t.Balance.IsPositive() {
			totals = append(totals, t)
		}
	}
	return totals, nil
}

var _ billing.BalanceRepository = (*GormBalanceRepository)(nil)
