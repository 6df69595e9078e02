// SPDX-FileCopyrightText: 2026 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humaidq/intake/api"
)

var (
	_ api.Cache = (*Memory)(nil)
	_ api.Cache = (*Redis)(nil)
)

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(0, 0)

	_, ok, err := m.Get(ctx, "read:/analyze")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "read:/analyze", []byte(`{"total_records":1}`)))

	got, ok, err := m.Get(ctx, "read:/analyze")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"total_records":1}`, string(got))
}

func TestMemoryInvalidatePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(16, time.Minute)

	require.NoError(t, m.Set(ctx, "read:/data?limit=100", []byte("a")))
	require.NoError(t, m.Set(ctx, "read:/analyze", []byte("b")))
	require.NoError(t, m.Set(ctx, "other", []byte("c")))

	require.NoError(t, m.InvalidatePrefix(ctx, "read:"))

	assert.Equal(t, 1, m.Len())

	_, ok, _ := m.Get(ctx, "other")
	assert.True(t, ok)
}

func TestMemoryEntriesExpire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(16, 20*time.Millisecond)

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	time.Sleep(60 * time.Millisecond)

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(2, time.Minute)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	require.NoError(t, m.Set(ctx, "c", []byte("3")))

	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestNewRedisRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedis(context.Background(), "", time.Minute)
	require.ErrorIs(t, err, ErrRedisURLRequired)

	_, err = NewRedis(context.Background(), "http://localhost:6379", time.Minute)
	require.Error(t, err)
}

func TestRedisKeysAreNamespaced(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	r := newRedisWithClient(client, DefaultNamespace, 0)

	assert.Equal(t, "intake:read:/analyze", r.key("read:/analyze"))
	assert.Equal(t, DefaultTTL, r.ttl)
}

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), "redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return r, mr
}

func TestRedisGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, mr := newTestRedis(t, time.Minute)

	_, ok, err := r.Get(ctx, "read:/analyze")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "read:/analyze", []byte(`{"total_records":1}`)))

	got, ok, err := r.Get(ctx, "read:/analyze")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"total_records":1}`, string(got))

	stored, err := mr.Get("intake:read:/analyze")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_records":1}`, stored)
}

func TestRedisEntriesExpire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, mr := newTestRedis(t, 30*time.Second)

	require.NoError(t, r.Set(ctx, "k", []byte("v")))
	assert.Equal(t, 30*time.Second, mr.TTL("intake:k"))

	mr.FastForward(31 * time.Second)

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisInvalidatePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, mr := newTestRedis(t, time.Minute)

	require.NoError(t, r.Set(ctx, "read:/data?limit=100", []byte("a")))
	require.NoError(t, r.Set(ctx, "read:/analyze", []byte("b")))
	require.NoError(t, r.Set(ctx, "other", []byte("c")))
	require.NoError(t, mr.Set("foreign:read:/analyze", "d"))

	require.NoError(t, r.InvalidatePrefix(ctx, "read:"))

	for _, key := range []string{"read:/data?limit=100", "read:/analyze"} {
		_, ok, err := r.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	_, ok, err := r.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("foreign:read:/analyze"))

	// Nothing left under the prefix.
	require.NoError(t, r.InvalidatePrefix(ctx, "read:"))
}

func TestRedisReportsServerErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, mr := newTestRedis(t, time.Minute)

	mr.SetError("ERR cache unavailable")

	_, _, err := r.Get(ctx, "k")
	require.Error(t, err)
	require.Error(t, r.Set(ctx, "k", []byte("v")))
	require.Error(t, r.InvalidatePrefix(ctx, "read:"))
}
