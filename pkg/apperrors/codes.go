package apperrors

// ErrorCode is the machine-readable code returned in API error envelopes.
type ErrorCode string

const (
	// System
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business logic
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeRateLimited     ErrorCode = "RATE_LIMITED"

	// Auth
	CodeMissingToken       ErrorCode = "MISSING_TOKEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeUserExists         ErrorCode = "USER_EXISTS"

	// Coupons & gamification
	CodeAlreadyClaimed    ErrorCode = "ALREADY_CLAIMED"
	CodeClaimLimitReached ErrorCode = "CLAIM_LIMIT_REACHED"
	CodeCouponExpired     ErrorCode = "COUPON_EXPIRED"

	// Billing
	CodeSubscriptionActive ErrorCode = "SUBSCRIPTION_ACTIVE"
	CodePaymentProvider    ErrorCode = "PAYMENT_PROVIDER_ERROR"
)
