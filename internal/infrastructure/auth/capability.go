package auth

import (
	"context"
	"slices"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Staff roles known to the billing module
const (
	RoleDirectorAdmin   = "director_admin"
	RoleAdminRestricted = "admin_restricted"
	RoleCoach           = "coach"
)

// DefaultRoleCapabilities maps roles to the capabilities they grant.
// CapabilityManageAll implies every other capability.
func DefaultRoleCapabilities() map[string][]billing.Capability {
	return map[string][]billing.Capability{
		RoleDirectorAdmin: {billing.CapabilityManageAll},
		RoleAdminRestricted: {
			billing.CapabilityViewFinancials,
			billing.CapabilityPostPayment,
			billing.CapabilityCreateCharge,
		},
		RoleCoach: nil,
	}
}

// RoleCapabilityChecker answers capability checks from the actor's roles.
// Unknown roles grant nothing.
type RoleCapabilityChecker struct {
	grants map[string][]billing.Capability
}

// NewRoleCapabilityChecker creates a checker; a nil map uses DefaultRoleCapabilities
func NewRoleCapabilityChecker(grants map[string][]billing.Capability) *RoleCapabilityChecker {
	if grants == nil {
		grants = DefaultRoleCapabilities()
	}
	return &RoleCapabilityChecker{grants: grants}
}

// Require returns ErrUnauthenticated without an actor and ErrForbidden when
// none of the actor's roles grants the capability
func (c *RoleCapabilityChecker) Require(ctx context.Context, actor *billing.Actor, capability billing.Capability) error {
	if !actor.IsAuthenticated() {
		return billing.ErrUnauthenticated
	}
	if c.Allows(actor.Roles, capability) {
		return nil
	}

	logger.L(ctx).Warn("capability denied",
		zap.String("actor_id", actor.ID.String()),
		zap.Strings("roles", actor.Roles),
		zap.String("capability", capability.String()),
	)
	return billing.ErrForbidden
}

// Allows reports whether any of roles grants capability
func (c *RoleCapabilityChecker) Allows(roles []string, capability billing.Capability) bool {
	for _, role := range roles {
		granted := c.grants[role]
		if slices.Contains(granted, billing.CapabilityManageAll) || slices.Contains(granted, capability) {
			return true
		}
	}
	return false
}

var _ billing.CapabilityChecker = (*RoleCapabilityChecker)(nil)
