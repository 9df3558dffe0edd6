package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	ctx := context.Background()

	a := NewLock(client, "ingest:s1", time.Minute)
	b := NewLock(client, "ingest:s1", time.Minute)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second holder is refused")

	require.NoError(t, b.Release(ctx))
	assert.True(t, mr.Exists("lock:ingest:s1"), "release by a non-owner is a no-op")

	assert.Equal(t, time.Minute, mr.TTL("lock:ingest:s1"))

	require.NoError(t, a.Release(ctx))
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	ctx := context.Background()

	ok, err := NewRedisLock(client, "k", time.Second).Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	ok, err = NewRedisLock(client, "k", time.Second).Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	a := NewMemoryLock("mem:s1", time.Minute)
	b := NewMemoryLock("mem:s1", time.Minute)
	a.now, b.now = clock, clock

	ok, _ := a.Acquire(ctx)
	assert.True(t, ok)
	ok, _ = b.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, b.Release(ctx))
	ok, _ = b.Acquire(ctx)
	assert.False(t, ok, "release by a non-owner is a no-op")

	now = now.Add(2 * time.Minute)
	ok, _ = b.Acquire(ctx)
	assert.True(t, ok, "expired locks can be taken over")

	require.NoError(t, b.Release(ctx))
	ok, _ = NewLock(nil, "mem:s1", time.Minute).Acquire(ctx)
	assert.True(t, ok)
}
