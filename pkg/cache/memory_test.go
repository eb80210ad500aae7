// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"pwned-range/pkg/hibp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ hibp.Cache = (*Memory)(nil)

func TestMemory_SetGet(t *testing.T) {
	m, err := NewMemory(16)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	ctx := context.Background()
	_, ok := m.Get(ctx, "5BAA6")
	assert.False(t, ok, "empty cache should miss")

	m.Set(ctx, "5BAA6", "1E4C9B93F3F0682250B6CF8331B7EE68FD8:3", time.Hour)
	body, ok := m.Get(ctx, "5BAA6")
	require.True(t, ok)
	assert.Equal(t, "1E4C9B93F3F0682250B6CF8331B7EE68FD8:3", body)

	// Idempotent repopulation.
	m.Set(ctx, "5BAA6", "1E4C9B93F3F0682250B6CF8331B7EE68FD8:3", time.Hour)
	body, ok = m.Get(ctx, "5BAA6")
	require.True(t, ok)
	assert.Equal(t, "1E4C9B93F3F0682250B6CF8331B7EE68FD8:3", body)
}

func TestMemory_Expires(t *testing.T) {
	m, err := NewMemory(16)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	ctx := context.Background()
	m.Set(ctx, "00000", "body", 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, ok := m.Get(ctx, "00000")
	assert.False(t, ok, "expired entry should miss")
}

func TestMemory_KeepsMaxEntries(t *testing.T) {
	m, err := NewMemory(DefaultMaxEntries)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	ctx := context.Background()
	const prefixes = 1000
	for i := 0; i < prefixes; i++ {
		m.Set(ctx, fmt.Sprintf("%05X", i), "1E4C9B93F3F0682250B6CF8331B7EE68FD8:1", time.Hour)
	}

	var kept int
	for i := 0; i < prefixes; i++ {
		if _, ok := m.Get(ctx, fmt.Sprintf("%05X", i)); ok {
			kept++
		}
	}
	assert.Equal(t, prefixes, kept, "every prefix below DefaultMaxEntries should stay cached")
}

func TestMemory_BehindCachedQuerier(t *testing.T) {
	m, err := NewMemory(0)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	upstream := &countingQuerier{body: "1E4C9B93F3F0682250B6CF8331B7EE68FD8:7"}
	q := hibp.NewCachedQuerier(upstream, m, time.Hour)

	d := hibp.HashPassword("password")
	for i := 0; i < 5; i++ {
		body, ok := q.Query(context.Background(), d.Prefix())
		require.True(t, ok)
		assert.Equal(t, 7, hibp.MatchCount(body, d.Suffix()))
	}

	assert.Equal(t, 1, upstream.calls)
}

type countingQuerier struct {
	body  string
	calls int
}

func (c *countingQuerier) Query(_ context.Context, _ string) (string, bool) {
	c.calls++
	return c.body, true
}
