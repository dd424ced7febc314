package lock

import (
	"context"
	"sync"
	"time"
)

// Locker hands out exclusive, non-blocking locks keyed by string.
// TryLock returns ok=false when the key is already held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// LocalLocker keeps locks in process memory
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// TryLock ignores ttl; a local lock lives until unlock is called
func (l *LocalLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
