package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsgolbr/tipsgol/internal/config"
)

type dashboard struct {
	Method string          `json:"method"`
	Net    decimal.Decimal `json:"net"`
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache, err := InitServer(context.Background(), config.RedisConnection{RedisAddress: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := dashboard{Method: "LAY0X1", Net: decimal.RequireFromString("30.50")}
	require.NoError(t, cache.Set(ctx, "analysis:dashboard", expected, time.Minute))

	var actual dashboard
	found, err := cache.Get(ctx, "analysis:dashboard", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.Method, actual.Method)
	assert.True(t, expected.Net.Equal(actual.Net))
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out dashboard
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "news:latest", []string{"a"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var out []string
	found, err := cache.Get(ctx, "news:latest", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "value", time.Minute))
	require.NoError(t, cache.Set(ctx, "b", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "a", "b"))
	require.NoError(t, cache.Invalidate(ctx))

	var out string
	found, err := cache.Get(ctx, "a", &out)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = cache.Get(ctx, "b", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out dashboard
	found, err := cache.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cache, err := InitServer(context.Background(), config.RedisConnection{
		RedisAddress:     "127.0.0.1:1",
		RedisDialTimeout: 200 * time.Millisecond,
	})
	assert.Nil(t, cache)
	assert.Error(t, err)
}
