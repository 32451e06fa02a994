// Package store provides the per-session locking discipline: updates to
// different sessions are fully independent, while concurrent updates to the
// same session (duplicate or out-of-order webhook deliveries) are
// serialized.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
)

// KeyedLock serializes work per key with one mutex per session id. Entries
// are reference-counted and removed once the last holder releases, so the
// map does not grow with session churn.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLock constructs an in-process keyed lock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*lockEntry)}
}

// Acquire blocks until the key's lock is held and returns the release
// function. The context is checked before blocking; in-process waits are
// expected to be short (one turn's processing).
func (l *KeyedLock) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}, nil
}

// RedisLock serializes per-session work across replicas using a Redis-held
// lock. Use it instead of KeyedLock when more than one instance can receive
// webhook deliveries for the same call.
type RedisLock struct {
	client     *redislock.Client
	expiration time.Duration
}

// NewRedisLock constructs a distributed locker over an existing redis
// client.
func NewRedisLock(client redis.UniversalClient, expiration time.Duration) *RedisLock {
	return &RedisLock{client: redislock.New(client), expiration: expiration}
}

// Acquire obtains the session's lock, retrying on contention, and returns
// the release function.
func (l *RedisLock) Acquire(ctx context.Context, key string) (func(), error) {
	strategy := redislock.LimitRetry(redislock.LinearBackoff(250*time.Millisecond), 40)
	lock, err := l.client.Obtain(ctx, "lock:session:"+key, l.expiration, &redislock.Options{RetryStrategy: strategy})
	if err != nil {
		return nil, fmt.Errorf("obtain session lock: %w", err)
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
