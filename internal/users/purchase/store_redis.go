// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/constants"
)

var errSessionNotFound = apperr.NotFoundMessage("Checkout session is invalid or expired")

// RedisSessionStore implements [SessionStore] with JSON values under a TTL.
type RedisSessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore creates a new Redis-backed SessionStore.
func NewSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string {
	return constants.RedisPrefixCheckout + id
}

/*
Save stores the session until its TTL lapses.

Parameters:
  - context: context.Context
  - session: *CheckoutSession
  - ttl: time.Duration

Returns:
  - error: Encoding or connectivity errors
*/
func (store *RedisSessionStore) Save(context context.Context, session *CheckoutSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_checkout_encode_failed: %w", err)
	}

	if err := store.client.Set(context, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_checkout_set_failed: %w", err)
	}
	return nil
}

/*
Find loads a pending session.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *CheckoutSession: Pending session
  - error: apperr.NotFound when missing or expired
*/
func (store *RedisSessionStore) Find(context context.Context, id string) (*CheckoutSession, error) {
	payload, err := store.client.Get(context, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errSessionNotFound
		}
		return nil, fmt.Errorf("redis_checkout_get_failed: %w", err)
	}

	session := &CheckoutSession{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_checkout_decode_failed: %w", err)
	}
	return session, nil
}

// Delete discards the session.
func (store *RedisSessionStore) Delete(context context.Context, id string) error {
	if err := store.client.Del(context, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis_checkout_delete_failed: %w", err)
	}
	return nil
}
