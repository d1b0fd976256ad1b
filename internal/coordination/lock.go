// Package coordination provides the Redis run lock that keeps batch
// runs single-flight across replicas.
package coordination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BatchRunKey is the lock key guarding automated and manual batch runs.
const BatchRunKey = "scanner:batch:run-lock"

// DefaultRunLockTTL bounds how long a crashed holder can block the next
// run. Sized well above the longest expected batch.
const DefaultRunLockTTL = 30 * time.Minute

// ErrLockNotHeld is returned when releasing or extending a lock this
// instance no longer holds.
var ErrLockNotHeld = errors.New("lock not held")

// RunLock is a single-flight lock backed by Redis SETNX. The token ties
// release to the acquiring instance so an expired lock taken over by
// another replica is never deleted by the original holder.
type RunLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewRunLock creates a run lock on the given key.
func NewRunLock(client *redis.Client, key string, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = DefaultRunLockTTL
	}

	return &RunLock{
		client: client,
		key:    key,
		token:  uuid.New().String(),
		ttl:    ttl,
	}
}

// TryAcquire attempts to take the lock without blocking. Returns false
// when another instance holds it.
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock if this instance still holds it. The Lua script
// makes the check-and-delete atomic.
func (l *RunLock) Release(ctx context.Context) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend pushes the TTL out while a long batch is still running.
func (l *RunLock) Extend(ctx context.Context, extension time.Duration) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.client, []string{l.key}, l.token, extension.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to extend run lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Key returns the lock key.
func (l *RunLock) Key() string {
	return l.key
}
