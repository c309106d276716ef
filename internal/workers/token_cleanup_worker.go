package workers

import (
	"context"
	"time"

	"couponhub/internal/logger"
	"couponhub/internal/repositories"
)

// TokenCleanupWorker removes expired refresh tokens so the sessions table
// does not grow without bound.
type TokenCleanupWorker struct {
	tokens   repositories.RefreshTokenRepository
	interval time.Duration
}

func NewTokenCleanupWorker(tokens repositories.RefreshTokenRepository, interval time.Duration) *TokenCleanupWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &TokenCleanupWorker{tokens: tokens, interval: interval}
}

func (w *TokenCleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("token cleanup worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TokenCleanupWorker) sweep(ctx context.Context) {
	n, err := w.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		logger.WorkerLog("token_cleanup", "sweep", err)
		return
	}
	if n > 0 {
		logger.Info("expired refresh tokens removed", "count", n)
	}
}
