package auth

import (
	"context"
	"testing"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilityChecker_Require(t *testing.T) {
	checker := NewRoleCapabilityChecker(nil)
	ctx := context.Background()

	actor := func(roles ...string) *billing.Actor {
		return &billing.Actor{ID: uuid.New(), Username: "staff", Roles: roles}
	}

	tests := []struct {
		name       string
		actor      *billing.Actor
		capability billing.Capability
		wantErr    error
	}{
		{"no actor", nil, billing.CapabilityViewFinancials, billing.ErrUnauthenticated},
		{"zero actor id", &billing.Actor{Roles: []string{RoleDirectorAdmin}}, billing.CapabilityViewFinancials, billing.ErrUnauthenticated},
		{"director may post", actor(RoleDirectorAdmin), billing.CapabilityPostPayment, nil},
		{"director may manage all", actor(RoleDirectorAdmin), billing.CapabilityManageAll, nil},
		{"restricted admin may view", actor(RoleAdminRestricted), billing.CapabilityViewFinancials, nil},
		{"restricted admin may post", actor(RoleAdminRestricted), billing.CapabilityPostPayment, nil},
		{"restricted admin may charge", actor(RoleAdminRestricted), billing.CapabilityCreateCharge, nil},
		{"restricted admin may not manage all", actor(RoleAdminRestricted), billing.CapabilityManageAll, billing.ErrForbidden},
		{"coach may not view", actor(RoleCoach), billing.CapabilityViewFinancials, billing.ErrForbidden},
		{"unknown role", actor("parent"), billing.CapabilityViewFinancials, billing.ErrForbidden},
		{"no roles", actor(), billing.CapabilityViewFinancials, billing.ErrForbidden},
		{"any granting role suffices", actor(RoleCoach, RoleAdminRestricted), billing.CapabilityPostPayment, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.Require(ctx, tt.actor, tt.capability)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRoleCapabilityChecker_CustomGrants(t *testing.T) {
	checker := NewRoleCapabilityChecker(map[string][]billing.Capability{
		RoleCoach: {billing.CapabilityViewFinancials},
	})

	assert.True(t, checker.Allows([]string{RoleCoach}, billing.CapabilityViewFinancials))
	assert.False(t, checker.Allows([]string{RoleCoach}, billing.CapabilityPostPayment))
	assert.False(t, checker.Allows([]string{RoleDirectorAdmin}, billing.CapabilityPostPayment))
}
