package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one session across server replicas
// sharing a StateStore.
type DistributedLocker interface {
	// Lock blocks until the lock for key (a session id) is held or ctx is
	// done. The lock expires after ttl if never released. The returned
	// UnlockFunc must be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
