// Package ratelimit implements a per-user sliding-window rate limit over
// Redis, applied before any paid checkout work begins. State lives in Redis
// so independent service instances share one budget per user.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
)

// Config holds the rate limit policy.
type Config struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
}

// Limiter enforces a sliding-window limit per user. Exceeding the window
// limit places a hard block for BlockDuration, so hammering clients back off
// completely instead of racing the window edge.
type Limiter struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter.
func NewLimiter(client *redis.Client, cfg Config, logger *slog.Logger) *Limiter {
	return &Limiter{client: client, cfg: cfg, logger: logger, now: time.Now}
}

func attemptsKey(userID string) string { return "checkout:attempts:" + userID }
func blockKey(userID string) string    { return "checkout:blocked:" + userID }

// Allow records one checkout attempt for the user and reports whether it may
// proceed. Redis outages fail open: checkout availability is worth more than
// a rate limit.
func (l *Limiter) Allow(ctx context.Context, userID string) error {
	blockTTL, err := l.client.TTL(ctx, blockKey(userID)).Result()
	if err != nil {
		l.failOpen(ctx, "ttl", err)
		return nil
	}
	if blockTTL > 0 {
		return apperrors.RateLimited(int(blockTTL.Seconds()) + 1)
	}

	now := l.now()
	windowStart := now.Add(-l.cfg.Window)
	key := attemptsKey(userID)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.failOpen(ctx, "pipeline", err)
		return nil
	}

	if int(count.Val()) > l.cfg.MaxAttempts {
		if err := l.client.Set(ctx, blockKey(userID), "1", l.cfg.BlockDuration).Err(); err != nil {
			l.failOpen(ctx, "block", err)
		}
		l.logger.WarnContext(ctx, "checkout rate limit exceeded",
			slog.String("user_id", userID),
			slog.Int64("attempts", count.Val()),
		)
		return apperrors.RateLimited(int(l.cfg.BlockDuration.Seconds()))
	}
	return nil
}

func (l *Limiter) failOpen(ctx context.Context, op string, err error) {
	l.logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
