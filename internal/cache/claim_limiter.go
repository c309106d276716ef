package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimLimiter tracks how many coupons a user has claimed today. Counters
// live in redis keyed by user and UTC date and expire on their own.
type ClaimLimiter interface {
	Count(ctx context.Context, userID string) (int64, error)
	Increment(ctx context.Context, userID string) (int64, error)
	Reset(ctx context.Context, userID string) error
}

type RedisClaimLimiter struct {
	client *redis.Client
}

func NewClaimLimiter(client *redis.Client) ClaimLimiter {
	return &RedisClaimLimiter{client: client}
}

func claimKey(userID string, now time.Time) string {
	return fmt.Sprintf("claims:%s:%s", userID, now.UTC().Format("2006-01-02"))
}

func (l *RedisClaimLimiter) Count(ctx context.Context, userID string) (int64, error) {
	n, err := l.client.Get(ctx, claimKey(userID, time.Now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (l *RedisClaimLimiter) Increment(ctx context.Context, userID string) (int64, error) {
	key := claimKey(userID, time.Now())
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RedisClaimLimiter) Reset(ctx context.Context, userID string) error {
	return l.client.Del(ctx, claimKey(userID, time.Now())).Err()
}
