package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window limiter shared by every API instance
// pointing at the same Redis.
type RedisRateLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

func NewRedisRateLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "expensehub:ratelimit:",
	}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := rl.prefix + key

	n, err := rl.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}

	ttl, err := rl.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}

	// a counter without expiry starts its window now, including one whose
	// earlier PEXPIRE was lost
	if ttl < 0 {
		if err := rl.rdb.PExpire(ctx, k, rl.window).Err(); err != nil {
			return false, 0, err
		}
		ttl = rl.window
	}

	if n > int64(rl.limit) {
		return false, ttl, nil
	}
	return true, 0, nil
}
