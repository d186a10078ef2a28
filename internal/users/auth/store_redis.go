// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookgod/internal/platform/constants"
)

// RedisLoginFailureCounter implements LoginFailureCounter using Redis counters.
type RedisLoginFailureCounter struct {
	client redis.UniversalClient
}

// NewLoginFailureCounter creates a new Redis-backed LoginFailureCounter.
func NewLoginFailureCounter(client redis.UniversalClient) *RedisLoginFailureCounter {
	return &RedisLoginFailureCounter{client: client}
}

func loginFailureKey(login string) string {
	return constants.RedisPrefixLoginFail + strings.ToLower(strings.TrimSpace(login))
}

/*
Increment bumps the failure counter and arms its expiry on the first failure.

Parameters:
  - context: context.Context
  - login: string (username or email as typed)
  - window: time.Duration

Returns:
  - int64: Failures within the window
  - error: Connectivity errors
*/
func (counter *RedisLoginFailureCounter) Increment(context context.Context, login string, window time.Duration) (int64, error) {
	key := loginFailureKey(login)

	count, err := counter.client.Incr(context, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_login_failure_incr_failed: %w", err)
	}

	// Only the first failure arms the window
	if count == 1 {
		if err := counter.client.Expire(context, key, window).Err(); err != nil {
			return count, fmt.Errorf("redis_login_failure_expire_failed: %w", err)
		}
	}

	return count, nil
}

/*
Count returns the current failure count, zero when the window has lapsed.

Parameters:
  - context: context.Context
  - login: string

Returns:
  - int64: Failures within the window
  - error: Connectivity errors
*/
func (counter *RedisLoginFailureCounter) Count(context context.Context, login string) (int64, error) {
	count, err := counter.client.Get(context, loginFailureKey(login)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_login_failure_get_failed: %w", err)
	}
	return count, nil
}

// Reset clears the counter after a successful login.
func (counter *RedisLoginFailureCounter) Reset(context context.Context, login string) error {
	if err := counter.client.Del(context, loginFailureKey(login)).Err(); err != nil {
		return fmt.Errorf("redis_login_failure_delete_failed: %w", err)
	}
	return nil
}
