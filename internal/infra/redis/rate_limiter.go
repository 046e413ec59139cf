package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared across instances:
//
//	INCR   ratelimit:{key}:{window}
//	EXPIRE ratelimit:{key}:{window} {window length}
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	clock  func() time.Time
}

func NewRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		client: client,
		limit:  int64(perMinute),
		window: time.Minute,
		clock:  time.Now,
	}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key, l.clock())
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}

func (l *RateLimiter) key(key string, now time.Time) string {
	window := now.UnixNano() / int64(l.window)
	return "ratelimit:" + key + ":" + strconv.FormatInt(window, 10)
}
