package collector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/wonny/hotrank/pkg/redis"
)

// Guard provides non-blocking mutual exclusion for collection cycles
type Guard interface {
	// TryAcquire returns ok=false without blocking when another cycle holds the guard.
	// release must be called exactly once when ok is true.
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// LocalGuard excludes overlapping cycles within one process
type LocalGuard struct {
	busy atomic.Bool
}

// TryAcquire implements Guard
func (g *LocalGuard) TryAcquire(context.Context) (func(), bool, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	return func() { g.busy.Store(false) }, true, nil
}

// LeaseGuard excludes overlapping cycles across processes via a redis lease.
// The lease TTL bounds how long a crashed holder can block others.
type LeaseGuard struct {
	lease *redis.Lease
}

// NewLeaseGuard wraps a redis lease
func NewLeaseGuard(lease *redis.Lease) *LeaseGuard {
	return &LeaseGuard{lease: lease}
}

// TryAcquire implements Guard
func (g *LeaseGuard) TryAcquire(ctx context.Context) (func(), bool, error) {
	token, ok, err := g.lease.Acquire(ctx)
	if err != nil || !ok {
		return nil, false, err
	}

	release := func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = g.lease.Release(rctx, token)
	}
	return release, true, nil
}

// Guards acquires every guard in order and releases in reverse
type Guards []Guard

// TryAcquire implements Guard
func (gs Guards) TryAcquire(ctx context.Context) (func(), bool, error) {
	releases := make([]func(), 0, len(gs))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, g := range gs {
		release, ok, err := g.TryAcquire(ctx)
		if err != nil || !ok {
			releaseAll()
			return nil, false, err
		}
		releases = append(releases, release)
	}

	return releaseAll, true, nil
}
