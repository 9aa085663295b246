package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// campusScope restricts rows carrying an enrollment_id column to
// enrollments of one campus. A nil campus leaves the query untouched.
func campusScope(column string, campusID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if campusID == nil {
			return db
		}
		return db.Where(column+" IN (SELECT id FROM enrollments WHERE campus_id = ?)", *campusID)
	}
}
