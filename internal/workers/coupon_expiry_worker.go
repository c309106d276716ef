package workers

import (
	"context"
	"time"

	"couponhub/internal/logger"
	"couponhub/internal/repositories"
)

// CouponExpiryWorker periodically flips coupons past their expiry date to
// the expired status so they drop out of the catalog.
type CouponExpiryWorker struct {
	coupons  repositories.CouponRepository
	interval time.Duration
}

func NewCouponExpiryWorker(coupons repositories.CouponRepository, interval time.Duration) *CouponExpiryWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CouponExpiryWorker{coupons: coupons, interval: interval}
}

func (w *CouponExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("coupon expiry worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CouponExpiryWorker) sweep(ctx context.Context) {
	n, err := w.coupons.MarkExpired(ctx, time.Now())
	if err != nil {
		logger.WorkerLog("coupon_expiry", "sweep", err)
		return
	}
	if n > 0 {
		logger.Info("expired coupons swept", "count", n)
	}
}
