package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"couponhub/internal/config"
	"couponhub/internal/email"
	"couponhub/internal/logger"
	"couponhub/internal/models"
	"couponhub/internal/repositories"
	"couponhub/internal/services/billing"
	"couponhub/internal/services/dto"
	"couponhub/pkg/apperrors"
)

type SubscriptionService interface {
	ListPlans(ctx context.Context) ([]dto.PlanResponse, error)
	StartCheckout(ctx context.Context, userID, planID string) (*dto.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
	GetMySubscription(ctx context.Context, userID string) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, userID string) (*dto.SubscriptionResponse, error)
	ListTransactions(ctx context.Context, userID string) ([]dto.TransactionResponse, error)

	// ExpireDue downgrades subscriptions past their end date. Called by the
	// background sweeper.
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type SubscriptionServiceImpl struct {
	subs   repositories.SubscriptionRepository
	users  repositories.UserRepository
	stripe billing.Client
	mailer email.Provider
	cfg    config.StripeConfig
}

func NewSubscriptionService(
	subs repositories.SubscriptionRepository,
	users repositories.UserRepository,
	stripeClient billing.Client,
	mailer email.Provider,
	cfg config.StripeConfig,
) SubscriptionService {
	return &SubscriptionServiceImpl{
		subs:   subs,
		users:  users,
		stripe: stripeClient,
		mailer: mailer,
		cfg:    cfg,
	}
}

func (s *SubscriptionServiceImpl) ListPlans(ctx context.Context) ([]dto.PlanResponse, error) {
	plans, err := s.subs.ListPlans(ctx, true)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp := dto.PlanResponse{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Currency: p.Currency,
			Interval: p.Interval,
		}
		if len(p.Features) > 0 {
			_ = json.Unmarshal(p.Features, &resp.Features)
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *SubscriptionServiceImpl) StartCheckout(ctx context.Context, userID, planID string) (*dto.CheckoutResponse, error) {
	if _, err := s.subs.GetActiveByUser(ctx, userID); err == nil {
		return nil, apperrors.ErrSubscriptionActive
	} else if !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, apperrors.InternalError(err)
	}

	plan, err := s.subs.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	sub := &models.UserSubscription{
		UserID: userID,
		PlanID: plan.ID,
		Status: models.SubscriptionStatusPending,
	}
	if err := s.subs.CreateSubscription(ctx, sub); err != nil {
		return nil, apperrors.InternalError(err)
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, billing.CheckoutSessionParams{
		AmountCents:       int64(plan.Price * 100),
		Currency:          plan.Currency,
		ProductName:       "CouponHub " + plan.Name,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		ClientReferenceID: sub.ID,
		CustomerEmail:     user.Email,
	})
	if err != nil {
		return nil, apperrors.ErrPaymentProvider(err)
	}

	sub.CheckoutSessionID = session.ID
	if err := s.subs.UpdateSubscription(ctx, sub); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.CheckoutResponse{CheckoutURL: session.URL, SessionID: session.ID}, nil
}

func (s *SubscriptionServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := billing.ParseEvent(payload, signatureHeader, s.cfg.WebhookSecret)
	if err != nil {
		return apperrors.ErrInvalidWebhookSignature
	}

	switch event.Type {
	case "checkout.session.completed":
		var session billing.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return apperrors.NewBadRequestError("malformed webhook object")
		}
		return s.activateFromSession(ctx, &session)
	case "checkout.session.expired":
		var session billing.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return apperrors.NewBadRequestError("malformed webhook object")
		}
		return s.cancelPending(ctx, session.ID)
	default:
		logger.CtxDebug(ctx, "ignoring webhook event", "type", event.Type)
		return nil
	}
}

func (s *SubscriptionServiceImpl) activateFromSession(ctx context.Context, session *billing.CheckoutSession) error {
	// Deliveries can repeat, the payment intent makes them idempotent.
	if session.PaymentIntent != "" {
		existing, err := s.subs.GetTransactionByProviderRef(ctx, session.PaymentIntent)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if existing != nil {
			return nil
		}
	}

	sub, err := s.findSubscription(ctx, session)
	if err != nil {
		return err
	}

	plan, err := s.subs.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusActive
	sub.StartDate = now
	sub.EndDate = planPeriodEnd(plan.Interval, now)
	if err := s.subs.UpdateSubscription(ctx, sub); err != nil {
		return apperrors.InternalError(err)
	}

	user, err := s.users.GetByID(ctx, sub.UserID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	fields := map[string]interface{}{"is_premium": true}
	if user.Role == models.UserRoleUser {
		fields["role"] = models.UserRolePremium
	}
	if err := s.users.UpdateFields(ctx, sub.UserID, fields); err != nil {
		return apperrors.InternalError(err)
	}

	paidAt := now
	txn := &models.PaymentTransaction{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		Amount:         float64(session.AmountTotal) / 100,
		Currency:       session.Currency,
		Status:         models.PaymentStatusPaid,
		ProviderRef:    session.PaymentIntent,
		PaidAt:         &paidAt,
	}
	if err := s.subs.CreateTransaction(ctx, txn); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "subscription activated", "user_id", sub.UserID, "plan", plan.Name)
	go func() {
		if err := s.mailer.SendPremiumReceiptEmail(context.Background(), user.Email, user.Username, plan.Name, txn.Amount, txn.Currency); err != nil {
			logger.Error("failed to send receipt email", "user_id", user.ID, "error", err)
		}
	}()
	return nil
}

func (s *SubscriptionServiceImpl) findSubscription(ctx context.Context, session *billing.CheckoutSession) (*models.UserSubscription, error) {
	if session.ClientReferenceID != "" {
		sub, err := s.subs.GetSubscriptionByID(ctx, session.ClientReferenceID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}
	sub, err := s.subs.GetByCheckoutSession(ctx, session.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return sub, nil
}

func (s *SubscriptionServiceImpl) cancelPending(ctx context.Context, sessionID string) error {
	sub, err := s.subs.GetByCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}
	if sub.Status != models.SubscriptionStatusPending {
		return nil
	}
	now := time.Now()
	sub.Status = models.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	if err := s.subs.UpdateSubscription(ctx, sub); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SubscriptionServiceImpl) GetMySubscription(ctx context.Context, userID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.subs.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrSubscriptionNotActive
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewSubscriptionResponse(sub), nil
}

// CancelSubscription turns auto-renew off. Premium stays until the paid
// period ends; the sweeper downgrades after that.
func (s *SubscriptionServiceImpl) CancelSubscription(ctx context.Context, userID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.subs.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrSubscriptionNotActive
		}
		return nil, apperrors.InternalError(err)
	}

	now := time.Now()
	sub.AutoRenew = false
	sub.CancelledAt = &now
	if err := s.subs.UpdateSubscription(ctx, sub); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *SubscriptionServiceImpl) ListTransactions(ctx context.Context, userID string) ([]dto.TransactionResponse, error) {
	txns, err := s.subs.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.TransactionResponse{
			ID:        t.ID,
			Amount:    t.Amount,
			Currency:  t.Currency,
			Status:    string(t.Status),
			PaidAt:    t.PaidAt,
			CreatedAt: t.CreatedAt,
		})
	}
	return out, nil
}

func (s *SubscriptionServiceImpl) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	subs, err := s.subs.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range subs {
		sub := &subs[i]
		sub.Status = models.SubscriptionStatusExpired
		if err := s.subs.UpdateSubscription(ctx, sub); err != nil {
			logger.Error("failed to expire subscription", "subscription_id", sub.ID, "error", err)
			continue
		}

		user, err := s.users.GetByID(ctx, sub.UserID)
		if err != nil {
			logger.Error("failed to load user for downgrade", "user_id", sub.UserID, "error", err)
			continue
		}
		fields := map[string]interface{}{"is_premium": false}
		if user.Role == models.UserRolePremium {
			fields["role"] = models.UserRoleUser
		}
		if err := s.users.UpdateFields(ctx, sub.UserID, fields); err != nil {
			logger.Error("failed to downgrade user", "user_id", sub.UserID, "error", err)
			continue
		}
		expired++
	}
	return expired, nil
}

func planPeriodEnd(interval string, from time.Time) time.Time {
	switch interval {
	case "yearly":
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
