package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
	// ErrLockLost is returned when refreshing a lease another holder has taken.
	ErrLockLost = errors.New("distributed lock lost")
)

const (
	releaseScript = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`
	refreshScript = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`
)

// Locker hands out leases so only one control loop publishes under a prefix.
type Locker struct {
	client *backend.Client
	prefix string
	poll   time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		poll:   100 * time.Millisecond,
	}
}

// Lease is a held lock. It expires after its TTL unless refreshed.
type Lease struct {
	client *backend.Client
	key    string
	token  string
	ttl    time.Duration
}

// Key returns the redis key backing the lease.
func (l *Lease) Key() string { return l.key }

// Lock acquires key using SET NX PX, retrying until ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", ErrLockAcquire)
	}
	lease := &Lease{
		client: l.client,
		key:    l.prefix + "lock:" + key,
		token:  fmt.Sprintf("%d", time.Now().UnixNano()),
		ttl:    ttl,
	}

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lease.key, lease.token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if ok {
			return lease, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Refresh extends the lease by its TTL.
func (l *Lease) Refresh(ctx context.Context) error {
	n, err := l.client.Eval(ctx, refreshScript, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to refresh lock: %w", err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}

// KeepAlive refreshes the lease every third of its TTL until ctx is done. It
// returns the first refresh error, or nil on cancellation.
func (l *Lease) KeepAlive(ctx context.Context) error {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// Release deletes the lock if this lease still owns it.
func (l *Lease) Release(ctx context.Context) error {
	return l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err()
}
