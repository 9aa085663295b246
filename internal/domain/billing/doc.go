// Package billing provides the domain model for the club billing ledger.
//
// This package implements the billing bounded context, which is responsible for:
//   - Charges owed by an enrollment and payments received against it
//   - Allocations that apply a payment to one or more pending charges
//   - Pending-amount and balance math with centralized money rounding
//   - Pending-balance worklist rules and dashboard trend computation
//
// Key Entities:
//   - Charge: an amount owed by an enrollment (tuition, uniform, trip)
//   - Payment: an amount received for an enrollment
//   - Allocation: how much of a payment was applied to a charge
//
// Enrollments, players, campuses, guardians and teams are consumed read-only;
// this context never mutates them.
package billing
