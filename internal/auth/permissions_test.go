package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		capability string
		want       bool
	}{
		{"user can read coupons", RoleUser, CapCouponRead, true},
		{"user can claim", RoleUser, CapCouponClaim, true},
		{"user cannot see exclusive deals", RoleUser, CapExclusiveDeals, false},
		{"user cannot manage users", RoleUser, CapUsersManage, false},
		{"premium sees exclusive deals", RolePremium, CapExclusiveDeals, true},
		{"premium cannot moderate", RolePremium, CapCouponModerate, false},
		{"admin can do everything", RoleAdmin, CapUsersManage, true},
		{"admin sees exclusive deals", RoleAdmin, CapExclusiveDeals, true},
		{"unknown role has nothing", "ghost", CapCouponRead, false},
		{"empty role has nothing", "", CapCouponRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.role, tt.capability))
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(RoleAdmin))
	assert.False(t, IsAdmin(RolePremium))
	assert.False(t, IsAdmin(""))
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, ValidateRole(RoleUser))
	assert.NoError(t, ValidateRole(RolePremium))
	assert.NoError(t, ValidateRole(RoleAdmin))
	assert.Error(t, ValidateRole("superuser"))
}
