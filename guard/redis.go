// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares the rate window across processes. Each attempt
// overwrites the origin's key and resets its TTL to the window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "tuvoto:ratelimit:", window: window}
}

// Allow is a single SET ... GET EX, so check and observation are atomic
func (l *RedisLimiter) Allow(ctx context.Context, origin string) (bool, error) {
	err := l.client.SetArgs(ctx, l.prefix+origin, strconv.FormatInt(time.Now().UnixMilli(), 10), redis.SetArgs{
		TTL: l.window,
		Get: true,
	}).Err()

	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to record origin access: %w", err)
	}
	return false, nil
}
