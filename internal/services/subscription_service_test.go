package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponhub/internal/config"
	"couponhub/internal/email"
	"couponhub/internal/models"
	"couponhub/internal/services/billing"
	"couponhub/pkg/apperrors"
)

const testWebhookSecret = "whsec_test"

// fakeStripe records checkout calls without touching the network.
type fakeStripe struct {
	sessions int
	lastRef  string
	fail     bool
}

func (f *fakeStripe) CreateCheckoutSession(ctx context.Context, params billing.CheckoutSessionParams) (*billing.CheckoutSession, error) {
	if f.fail {
		return nil, fmt.Errorf("stripe: simulated outage")
	}
	f.sessions++
	f.lastRef = params.ClientReferenceID
	return &billing.CheckoutSession{
		ID:                fmt.Sprintf("cs_test_%d", f.sessions),
		URL:               "https://checkout.stripe.test/session",
		ClientReferenceID: params.ClientReferenceID,
		AmountTotal:       params.AmountCents,
		Currency:          params.Currency,
	}, nil
}

func (f *fakeStripe) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	return nil
}

func newSubscriptionEnv(t *testing.T) (*testEnv, SubscriptionService, *fakeStripe, *models.SubscriptionPlan) {
	t.Helper()
	env := newTestEnv(t)

	plan := &models.SubscriptionPlan{
		Name:     "Premium Monthly",
		Price:    4.99,
		Currency: "USD",
		Interval: "monthly",
		IsActive: true,
	}
	require.NoError(t, env.subs.CreatePlan(context.Background(), plan))

	stripe := &fakeStripe{}
	svc := NewSubscriptionService(env.subs, env.users, stripe, email.NoopProvider{}, config.StripeConfig{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
		SuccessURL:    "https://app.test/success",
		CancelURL:     "https://app.test/cancel",
	})
	return env, svc, stripe, plan
}

func completedSessionPayload(t *testing.T, sessionID, subscriptionID, paymentIntent string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_test",
		"type": "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":                  sessionID,
				"payment_intent":      paymentIntent,
				"payment_status":      "paid",
				"client_reference_id": subscriptionID,
				"amount_total":        499,
				"currency":            "usd",
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestSubscriptionService_StartCheckout(t *testing.T) {
	env, svc, stripe, plan := newSubscriptionEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice", "alice@example.com")

	checkout, err := svc.StartCheckout(ctx, user.User.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/session", checkout.CheckoutURL)
	assert.Equal(t, 1, stripe.sessions)

	sub, err := env.subs.GetByCheckoutSession(ctx, checkout.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPending, sub.Status)
	assert.Equal(t, sub.ID, stripe.lastRef)

	t.Run("unknown plan", func(t *testing.T) {
		_, err := svc.StartCheckout(ctx, user.User.ID, "00000000-0000-0000-0000-000000000000")
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})

	t.Run("provider outage maps to payment error", func(t *testing.T) {
		stripe.fail = true
		defer func() { stripe.fail = false }()

		other := env.register(t, "bob", "bob@example.com")
		_, err := svc.StartCheckout(ctx, other.User.ID, plan.ID)
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodePaymentProvider, appErr.Code)
	})
}

func TestSubscriptionService_WebhookActivation(t *testing.T) {
	env, svc, _, plan := newSubscriptionEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice", "alice@example.com")

	checkout, err := svc.StartCheckout(ctx, user.User.ID, plan.ID)
	require.NoError(t, err)
	sub, err := env.subs.GetByCheckoutSession(ctx, checkout.SessionID)
	require.NoError(t, err)

	payload := completedSessionPayload(t, checkout.SessionID, sub.ID, "pi_test_1")
	header := billing.SignPayload(payload, testWebhookSecret, time.Now())

	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	t.Run("subscription is active", func(t *testing.T) {
		active, err := svc.GetMySubscription(ctx, user.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "active", active.Status)
		assert.Equal(t, "Premium Monthly", active.PlanName)
	})

	t.Run("user became premium", func(t *testing.T) {
		me, err := env.authSvc.GetCurrentUser(ctx, user.User.ID)
		require.NoError(t, err)
		assert.True(t, me.IsPremium)
		assert.Equal(t, "premium", me.Role)
	})

	t.Run("transaction recorded", func(t *testing.T) {
		txns, err := svc.ListTransactions(ctx, user.User.ID)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "paid", txns[0].Status)
		assert.InDelta(t, 4.99, txns[0].Amount, 0.001)
	})

	t.Run("redelivery is idempotent", func(t *testing.T) {
		require.NoError(t, svc.HandleWebhook(ctx, payload, header))

		txns, err := svc.ListTransactions(ctx, user.User.ID)
		require.NoError(t, err)
		assert.Len(t, txns, 1)
	})

	t.Run("second checkout while active is refused", func(t *testing.T) {
		_, err := svc.StartCheckout(ctx, user.User.ID, plan.ID)
		assert.ErrorIs(t, err, apperrors.ErrSubscriptionActive)
	})
}

func TestSubscriptionService_WebhookBadSignature(t *testing.T) {
	_, svc, _, _ := newSubscriptionEnv(t)

	payload := []byte(`{"id":"evt","type":"checkout.session.completed"}`)
	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)
}

func TestSubscriptionService_CancelAndExpire(t *testing.T) {
	env, svc, _, plan := newSubscriptionEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice", "alice@example.com")

	checkout, err := svc.StartCheckout(ctx, user.User.ID, plan.ID)
	require.NoError(t, err)
	sub, err := env.subs.GetByCheckoutSession(ctx, checkout.SessionID)
	require.NoError(t, err)

	payload := completedSessionPayload(t, checkout.SessionID, sub.ID, "pi_test_2")
	header := billing.SignPayload(payload, testWebhookSecret, time.Now())
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	cancelled, err := svc.CancelSubscription(ctx, user.User.ID)
	require.NoError(t, err)
	assert.False(t, cancelled.AutoRenew)
	require.NotNil(t, cancelled.CancelledAt)

	t.Run("premium persists until period end", func(t *testing.T) {
		me, err := env.authSvc.GetCurrentUser(ctx, user.User.ID)
		require.NoError(t, err)
		assert.True(t, me.IsPremium)
	})

	t.Run("sweeper downgrades after period end", func(t *testing.T) {
		n, err := svc.ExpireDue(ctx, time.Now().AddDate(0, 2, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		me, err := env.authSvc.GetCurrentUser(ctx, user.User.ID)
		require.NoError(t, err)
		assert.False(t, me.IsPremium)
		assert.Equal(t, "user", me.Role)

		_, err = svc.GetMySubscription(ctx, user.User.ID)
		assert.ErrorIs(t, err, apperrors.ErrSubscriptionNotActive)
	})

	t.Run("cancel without active subscription", func(t *testing.T) {
		_, err := svc.CancelSubscription(ctx, user.User.ID)
		assert.ErrorIs(t, err, apperrors.ErrSubscriptionNotActive)
	})
}

var _ billing.Client = (*fakeStripe)(nil)
