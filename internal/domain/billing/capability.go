package billing

import (
	"context"

	"github.com/google/uuid"
)

// Capability names an operation family an actor may be allowed to perform
type Capability string

const (
	CapabilityViewFinancials Capability = "billing:view_financials"
	CapabilityPostPayment    Capability = "billing:post_payment"
	CapabilityCreateCharge   Capability = "billing:create_charge"
	CapabilityManageAll      Capability = "billing:manage_all"
)

// String returns the string representation of Capability
func (c Capability) String() string {
	return string(c)
}

// Actor is the authenticated caller as resolved by the identity provider.
// A nil *Actor or a zero ID means nobody is signed in.
type Actor struct {
	ID       uuid.UUID
	Username string
	Roles    []string
}

// IsAuthenticated reports whether the actor carries an identity
func (a *Actor) IsAuthenticated() bool {
	return a != nil && a.ID != uuid.Nil
}

// CapabilityChecker decides whether an actor may exercise a capability.
// Require returns ErrUnauthenticated when there is no actor and ErrForbidden
// when the actor lacks the capability.
type CapabilityChecker interface {
	Require(ctx context.Context, actor *Actor, capability Capability) error
}
