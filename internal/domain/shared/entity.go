package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity every ledger record shares. Ledger rows
// are never updated in place, so there is no UpdatedAt or Version.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
}

// NewBaseEntityAt returns a fresh identity stamped at now
func NewBaseEntityAt(now time.Time) BaseEntity {
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
	}
}
