package email

import "context"

// Provider sends transactional mail. Handlers never block on it; services
// call it from goroutines.
type Provider interface {
	SendVerificationEmail(ctx context.Context, to, username, token string) error
	SendPasswordResetEmail(ctx context.Context, to, username, token string) error
	SendPremiumReceiptEmail(ctx context.Context, to, username, planName string, amount float64, currency string) error
}
