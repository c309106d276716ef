package auth

import "errors"

// Roles. Premium is a tier of user, not a separate permission universe: every
// capability of "user" is implied for "premium".
const (
	RoleUser    = "user"
	RolePremium = "premium"
	RoleAdmin   = "admin"
)

// Capabilities gate routes and service operations. All role checks go through
// CanAccess so enforcement points cannot drift apart.
const (
	CapCouponRead      = "coupons:read"
	CapCouponWrite     = "coupons:write"
	CapCouponClaim     = "coupons:claim"
	CapCouponModerate  = "coupons:moderate"
	CapProfileSelf     = "profile:self"
	CapUsersManage     = "users:manage"
	CapBadgesManage    = "badges:manage"
	CapPlansManage     = "plans:manage"
	CapExclusiveDeals  = "coupons:exclusive"
	CapAnalyticsAccess = "analytics:read"
)

var capabilities = map[string][]string{
	RoleUser: {
		CapCouponRead,
		CapCouponWrite,
		CapCouponClaim,
		CapProfileSelf,
	},
	RolePremium: {
		CapCouponRead,
		CapCouponWrite,
		CapCouponClaim,
		CapProfileSelf,
		CapExclusiveDeals,
	},
	RoleAdmin: {
		CapCouponRead,
		CapCouponWrite,
		CapCouponClaim,
		CapCouponModerate,
		CapProfileSelf,
		CapUsersManage,
		CapBadgesManage,
		CapPlansManage,
		CapExclusiveDeals,
		CapAnalyticsAccess,
	},
}

// CanAccess reports whether the role grants the capability.
func CanAccess(role, capability string) bool {
	caps, exists := capabilities[role]
	if !exists {
		return false
	}

	for _, c := range caps {
		if c == capability {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role is the admin role.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// ValidateRole rejects unknown role strings.
func ValidateRole(role string) error {
	switch role {
	case RoleUser, RolePremium, RoleAdmin:
		return nil
	default:
		return errors.New("invalid role")
	}
}
