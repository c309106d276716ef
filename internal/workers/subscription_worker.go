package workers

import (
	"context"
	"time"

	"couponhub/internal/logger"
	"couponhub/internal/services"
)

// SubscriptionWorker downgrades premium accounts whose paid period ended.
type SubscriptionWorker struct {
	subscriptions services.SubscriptionService
	interval      time.Duration
}

func NewSubscriptionWorker(subscriptions services.SubscriptionService, interval time.Duration) *SubscriptionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SubscriptionWorker{subscriptions: subscriptions, interval: interval}
}

func (w *SubscriptionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SubscriptionWorker) sweep(ctx context.Context) {
	n, err := w.subscriptions.ExpireDue(ctx, time.Now())
	if err != nil {
		logger.WorkerLog("subscription_expiry", "sweep", err)
		return
	}
	if n > 0 {
		logger.Info("expired subscriptions downgraded", "count", n)
	}
}
