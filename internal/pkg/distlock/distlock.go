// Package distlock provides short-lived exclusive locks keyed by name.
package distlock

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// NewLock creates a lock using the best available backend.
// If redisClient is non-nil, uses Redis (cross-instance locking).
// Otherwise falls back to an in-process lock.
func NewLock(redisClient *redis.Client, key string, ttl time.Duration) DistLock {
	if redisClient != nil {
		return NewRedisLock(redisClient, key, ttl)
	}
	return NewMemoryLock(key, ttl)
}

// =============================================================================
// In-process lock (single instance, memory session backend)
// =============================================================================

type memoryHolder struct {
	owner   *MemoryLock
	expires time.Time
}

var memoryLocks = struct {
	sync.Mutex
	held map[string]memoryHolder
}{held: make(map[string]memoryHolder)}

// MemoryLock implements DistLock within one process. Like the Redis lock it
// expires after ttl so a crashed holder cannot block the key forever.
type MemoryLock struct {
	key string
	ttl time.Duration
	now func() time.Time
}

// NewMemoryLock creates an in-process lock for key.
func NewMemoryLock(key string, ttl time.Duration) *MemoryLock {
	return &MemoryLock{key: key, ttl: ttl, now: time.Now}
}

// Acquire tries to acquire the lock. Returns true if successful.
func (l *MemoryLock) Acquire(ctx context.Context) (bool, error) {
	memoryLocks.Lock()
	defer memoryLocks.Unlock()

	now := l.now()
	if h, ok := memoryLocks.held[l.key]; ok && h.owner != l && now.Before(h.expires) {
		return false, nil
	}
	memoryLocks.held[l.key] = memoryHolder{owner: l, expires: now.Add(l.ttl)}
	return true, nil
}

// Release releases the lock if we still own it.
func (l *MemoryLock) Release(ctx context.Context) error {
	memoryLocks.Lock()
	defer memoryLocks.Unlock()

	if h, ok := memoryLocks.held[l.key]; ok && h.owner == l {
		delete(memoryLocks.held, l.key)
	}
	return nil
}
