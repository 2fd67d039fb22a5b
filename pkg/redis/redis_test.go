package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hotrank/pkg/config"
)

func disabledConfig() *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(disabledConfig())
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	var result []string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", []string{"a"}, time.Minute))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(Disabled(), "test")

	calls := 0
	var result []string
	err := cache.GetOrSet(context.Background(), ActivePlatformsKey, &result, time.Minute, func() (interface{}, error) {
		calls++
		return []string{"开盘啦", "同花顺"}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"开盘啦", "同花顺"}, result)
}

func TestLease_DisabledAlwaysGranted(t *testing.T) {
	lease := NewLease(Disabled(), "test", "collect", time.Minute)
	ctx := context.Background()

	token, ok, err := lease.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)
	assert.NoError(t, lease.Release(ctx, token))
	assert.Equal(t, "test:lease:collect", lease.Key())
}

// TestLease_Exclusive runs against a real server when TEST_REDIS_HOST is set
func TestLease_Exclusive(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}

	client, err := New(&config.Config{
		Redis: config.RedisConfig{Host: host, Port: "6379", Enabled: true},
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	lease := NewLease(client, "hotrank-test", "collect", 10*time.Second)
	defer client.Redis().Del(ctx, lease.Key())

	token, ok, err := lease.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lease.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	// foreign token must not release
	require.NoError(t, lease.Release(ctx, "not-the-owner"))
	_, ok, _ = lease.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, lease.Release(ctx, token))
	token2, ok, err := lease.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, lease.Release(ctx, token2))
}
