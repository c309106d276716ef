package models

type UserStatus string
type UserRole string
type CouponStatus string
type DiscountType string
type SubscriptionStatus string
type PaymentStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleUser    UserRole = "user"
	UserRolePremium UserRole = "premium"
	UserRoleAdmin   UserRole = "admin"

	CouponStatusPending CouponStatus = "pending"
	CouponStatusActive  CouponStatus = "active"
	CouponStatusExpired CouponStatus = "expired"
	CouponStatusRemoved CouponStatus = "removed"

	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"

	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)
