package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type point struct{ Lat, Lng float64 }
	require.NoError(t, SetJSON(ctx, m, "p", point{1.5, -2}, 0))

	var got point
	require.NoError(t, GetJSON(ctx, m, "p", &got))
	assert.Equal(t, point{1.5, -2}, got)
}

func TestNilCache(t *testing.T) {
	ctx := context.Background()
	var c Cache

	assert.NoError(t, SetJSON(ctx, c, "k", 1, time.Minute))
	var v int
	assert.ErrorIs(t, GetJSON(ctx, c, "k", &v), ErrMiss)
}

func TestRedisCacheMissOnUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	c := NewRedisCache(client, "movein:")
	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
