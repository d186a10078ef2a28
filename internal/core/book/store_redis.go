// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookgod/internal/platform/constants"
)

// RedisInfoCache implements [InfoCache] with one JSON value per book.
type RedisInfoCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewInfoCache creates a Redis backed [InfoCache] whose entries expire after ttl.
func NewInfoCache(client redis.UniversalClient, ttl time.Duration) *RedisInfoCache {
	return &RedisInfoCache{client: client, ttl: ttl}
}

func infoKey(id string) string {
	return constants.RedisPrefixBookInfo + id
}

/*
Get returns the cached info for a book.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Info: nil on a cache miss
  - error: Connectivity or decoding errors
*/
func (cache *RedisInfoCache) Get(context context.Context, id string) (*Info, error) {
	payload, err := cache.client.Get(context, infoKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_book_info_get_failed: %w", err)
	}

	info := &Info{}
	if err := json.Unmarshal(payload, info); err != nil {
		return nil, fmt.Errorf("redis_book_info_decode_failed: %w", err)
	}
	return info, nil
}

// Set stores info under its book id with the configured TTL.
func (cache *RedisInfoCache) Set(context context.Context, info *Info) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("redis_book_info_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, infoKey(info.ID), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_book_info_set_failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry. Deleting a missing key is not an error.
func (cache *RedisInfoCache) Invalidate(context context.Context, id string) error {
	if err := cache.client.Del(context, infoKey(id)).Err(); err != nil {
		return fmt.Errorf("redis_book_info_del_failed: %w", err)
	}
	return nil
}
