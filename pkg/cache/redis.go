// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"time"
)

const DefaultKeyPrefix = "pwned:range:"

// Redis shares range responses between processes. Redis failures are logged and treated as a miss.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// Dial connects to the Redis server at url and pings it.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func NewRedis(client *redis.Client, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	return &Redis{client: client, keyPrefix: keyPrefix}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	body, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}

	if err != nil {
		log.Warn().Err(err).Msgf("error reading range %s from redis", key)
		return "", false
	}

	return body, true
}

func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if err := r.client.Set(ctx, r.keyPrefix+key, value, ttl).Err(); err != nil {
		log.Warn().Err(err).Msgf("error writing range %s to redis", key)
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
