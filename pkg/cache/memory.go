// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package cache holds the range response caches that can back hibp.CachedQuerier.
package cache

import (
	"context"
	"github.com/dgraph-io/ristretto"
	"time"
)

// DefaultMaxEntries is enough to keep every prefix queried during a long audit. A range response is about 30KB.
const DefaultMaxEntries = 4096

// Memory is an in process cache with per entry expiry.
type Memory struct {
	cache *ristretto.Cache
}

func NewMemory(maxEntries int64) (*Memory, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		// Recommended by ristretto: 10x the number of items expected when full.
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// Every entry costs 1 so MaxCost is an entry count. Without this ristretto adds its own per item
		// overhead to the cost and only a fraction of maxEntries fits.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &Memory{cache: c}, nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return "", false
	}

	body, ok := v.(string)
	return body, ok
}

// Set stores the value with a cost of one, MaxCost is the entry count.
func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) {
	m.cache.SetWithTTL(key, value, 1, ttl)
	// Sets are buffered, wait so the next Get for the same prefix sees it.
	m.cache.Wait()
}

func (m *Memory) Close() {
	m.cache.Close()
}
