package models

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides the identity columns shared by every ledger table.
// Ledger rows are append-only, so there is no updated_at column.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity.
// Timestamps are stored in UTC so range predicates compare correctly on
// every supported driver.
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
