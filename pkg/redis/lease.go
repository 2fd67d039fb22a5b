package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only when the caller still owns it
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Lease is a cross-process mutual exclusion lock with a TTL
// ⭐ SSOT: 프로세스 간 수집 중복 방지는 여기서만
type Lease struct {
	client *Client
	key    string
	ttl    time.Duration
}

// NewLease creates a lease helper for name
func NewLease(client *Client, prefix, name string, ttl time.Duration) *Lease {
	return &Lease{
		client: client,
		key:    fmt.Sprintf("%s:lease:%s", prefix, name),
		ttl:    ttl,
	}
}

// Acquire tries to take the lease without blocking.
// It returns the owner token and whether the lease was obtained.
// Disabled clients always grant the lease.
func (l *Lease) Acquire(ctx context.Context) (string, bool, error) {
	token := uuid.NewString()
	if !l.client.Enabled() {
		return token, true, nil
	}

	ok, err := l.client.Redis().SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("lease acquire failed: %w", err)
	}
	return token, ok, nil
}

// Release frees the lease if token still owns it
func (l *Lease) Release(ctx context.Context, token string) error {
	if !l.client.Enabled() {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client.Redis(), []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("lease release failed: %w", err)
	}
	return nil
}

// Key returns the redis key backing the lease
func (l *Lease) Key() string {
	return l.key
}
