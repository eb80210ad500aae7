// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"context"
	"github.com/rs/zerolog/log"
	"time"
)

const DefaultCacheTTL = time.Hour

// Cache stores range responses keyed by hash prefix.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
}

// CachedQuerier serves range responses from a Cache, falling back to the wrapped querier on a miss.
// Only usable responses are stored, an unavailable API is asked again on the next query.
type CachedQuerier struct {
	querier RangeQuerier
	cache   Cache
	ttl     time.Duration
}

func NewCachedQuerier(querier RangeQuerier, cache Cache, ttl time.Duration) *CachedQuerier {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CachedQuerier{querier: querier, cache: cache, ttl: ttl}
}

func (q *CachedQuerier) Query(ctx context.Context, prefix string) (string, bool) {
	if body, ok := q.cache.Get(ctx, prefix); ok {
		log.Debug().Msgf("range %s served from cache", prefix)
		return body, true
	}

	body, ok := q.querier.Query(ctx, prefix)
	if ok {
		q.cache.Set(ctx, prefix, body, q.ttl)
	}

	return body, ok
}
