package apperrors

import (
	"net/http"
)

// Wrapping factories for repository-level errors.

// ErrNotFound converts a repository miss into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrConflict reports a generic 409.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// --- Auth & accounts ---

// ErrUserExists is returned for duplicate email or username at registration.
// The USER_EXISTS code does not say which field collided.
var ErrUserExists = New(
	CodeUserExists,
	"auth",
	"An account with this email or username already exists",
	http.StatusConflict,
)

// ErrInvalidCredentials is deliberately identical for unknown email and wrong
// password so login cannot be used to enumerate accounts.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrMissingToken - no Authorization header was supplied.
var ErrMissingToken = New(
	CodeMissingToken,
	"auth",
	"Authorization token is missing",
	http.StatusUnauthorized,
)

// ErrInvalidToken - signature, expiry or lookup check failed (access, refresh,
// verification and reset tokens all map here).
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrWeakPassword rejects passwords below the minimum length.
var ErrWeakPassword = New(
	CodeValidationError,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrUserBanned = New(
	CodeForbidden,
	"auth",
	"Your account has been banned",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Coupons & claims ---

var ErrCouponNotActive = New(
	CodeConflict,
	"coupon",
	"Coupon is not active",
	http.StatusConflict,
)

var ErrCouponExpired = New(
	CodeCouponExpired,
	"coupon",
	"Coupon has expired",
	http.StatusConflict,
)

var ErrAlreadyClaimed = New(
	CodeAlreadyClaimed,
	"coupon",
	"Coupon already claimed by this user",
	http.StatusConflict,
)

var ErrClaimLimitReached = New(
	CodeClaimLimitReached,
	"coupon",
	"Daily claim limit reached",
	http.StatusForbidden,
)

var ErrCannotClaimOwnCoupon = New(
	CodeConflict,
	"coupon",
	"You cannot claim your own coupon",
	http.StatusConflict,
)

// --- Subscriptions & billing ---

var ErrSubscriptionActive = New(
	CodeSubscriptionActive,
	"subscription",
	"An active premium subscription already exists",
	http.StatusConflict,
)

var ErrSubscriptionNotActive = New(
	CodeNotFound,
	"subscription",
	"No active premium subscription",
	http.StatusNotFound,
)

// ErrPaymentProvider wraps failures talking to the payment provider.
func ErrPaymentProvider(err error) *AppError {
	return Wrap(err, CodePaymentProvider, "billing", "Payment provider error", http.StatusBadGateway)
}

var ErrInvalidWebhookSignature = New(
	CodePaymentProvider,
	"billing",
	"Webhook signature verification failed",
	http.StatusBadRequest,
)
