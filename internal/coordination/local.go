package coordination

import (
	"context"
	"sync"
)

// Locker is the single-flight guard batch runs execute under. RunLock
// implements it over Redis; LocalLock covers single-instance deploys
// without one.
type Locker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalLock is an in-process Locker. Only safe when exactly one
// instance of the service runs.
type LocalLock struct {
	mu sync.Mutex
}

// NewLocalLock creates a local lock.
func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// TryAcquire takes the lock without blocking.
func (l *LocalLock) TryAcquire(_ context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

// Release frees the lock.
func (l *LocalLock) Release(_ context.Context) error {
	l.mu.Unlock()
	return nil
}
