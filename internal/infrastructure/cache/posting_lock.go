package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	postingLockPrefix = "billing:posting-lock:"
	lockPollInterval  = 25 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token, so a
// holder whose TTL expired cannot drop a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPostingLock serializes postings per enrollment across instances with
// SET NX PX. The TTL bounds how long a crashed holder can block an enrollment.
type RedisPostingLock struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// NewRedisPostingLock creates a distributed posting lock
func NewRedisPostingLock(client *redis.Client, ttl, wait time.Duration, logger *zap.Logger) *RedisPostingLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPostingLock{client: client, ttl: ttl, wait: wait, logger: logger}
}

// Acquire polls until the lock is taken, wait elapses or ctx is done.
// A timeout is reported as billing.ErrPostingInProgress.
func (l *RedisPostingLock) Acquire(ctx context.Context, enrollmentID uuid.UUID) (func(), error) {
	key := postingLockPrefix + enrollmentID.String()
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("failed to acquire posting lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, billing.ErrPostingInProgress
		case <-ticker.C:
		}
	}
}

func (l *RedisPostingLock) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled; release anyway.
			ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("failed to release posting lock",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		})
	}
}

// InMemoryPostingLock serializes postings within one process. Each enrollment
// gets a one-slot channel used as a context-aware mutex.
type InMemoryPostingLock struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*lockSlot
	wait  time.Duration
}

type lockSlot struct {
	ch      chan struct{}
	holders int
}

// NewInMemoryPostingLock creates a process-local posting lock
func NewInMemoryPostingLock(wait time.Duration) *InMemoryPostingLock {
	return &InMemoryPostingLock{
		slots: make(map[uuid.UUID]*lockSlot),
		wait:  wait,
	}
}

// Acquire blocks until the enrollment slot is free, wait elapses or ctx is done
func (l *InMemoryPostingLock) Acquire(ctx context.Context, enrollmentID uuid.UUID) (func(), error) {
	slot := l.ref(enrollmentID)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(enrollmentID)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(enrollmentID)
		return nil, billing.ErrPostingInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.unref(enrollmentID)
		})
	}, nil
}

func (l *InMemoryPostingLock) ref(id uuid.UUID) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[id]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[id] = slot
	}
	slot.holders++
	return slot
}

func (l *InMemoryPostingLock) unref(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if slot, ok := l.slots[id]; ok {
		slot.holders--
		if slot.holders == 0 {
			delete(l.slots, id)
		}
	}
}

// NoopPostingLock is used when posting serialization is switched off
type NoopPostingLock struct{}

// Acquire always succeeds immediately
func (NoopPostingLock) Acquire(ctx context.Context, _ uuid.UUID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}

var (
	_ billing.PostingLock = (*RedisPostingLock)(nil)
	_ billing.PostingLock = (*InMemoryPostingLock)(nil)
	_ billing.PostingLock = NoopPostingLock{}
)
