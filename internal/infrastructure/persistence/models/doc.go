// Package models contains GORM persistence models for the billing tables.
// Domain entities stay free of ORM tags; each model converts with
// ToDomain/FromDomain and repositories only ever touch models.
//
//   - base.go: BaseModel (id, created_at)
//   - billing.go: charges, charge types, payments, allocations, balances
//   - academy.go: enrollments and the records they reference
package models
