package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const balanceKeyPrefix = "billing:balance:"

// RedisBalanceCache stores enrollment totals as JSON with a TTL. It is shared
// by every instance, so an invalidation after a posting is seen by all.
type RedisBalanceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisBalanceCache creates a balance cache on an existing client
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{
		client:    client,
		keyPrefix: balanceKeyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisBalanceCache) key(enrollmentID uuid.UUID) string {
	return c.keyPrefix + enrollmentID.String()
}

// Get returns the cached totals. A miss is (nil, false, nil).
func (c *RedisBalanceCache) Get(ctx context.Context, enrollmentID uuid.UUID) (*billing.Totals, bool, error) {
	raw, err := c.client.Get(ctx, c.key(enrollmentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached balance: %w", err)
	}

	var totals billing.Totals
	if err := json.Unmarshal(raw, &totals); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached balance: %w", err)
	}
	return &totals, true, nil
}

// Set stores totals under the enrollment key
func (c *RedisBalanceCache) Set(ctx context.Context, totals billing.Totals) error {
	raw, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("failed to encode balance: %w", err)
	}
	if err := c.client.Set(ctx, c.key(totals.EnrollmentID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}
	return nil
}

// Invalidate drops the cached totals of an enrollment
func (c *RedisBalanceCache) Invalidate(ctx context.Context, enrollmentID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(enrollmentID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}
	return nil
}

type balanceEntry struct {
	totals    billing.Totals
	expiresAt time.Time
}

// InMemoryBalanceCache is a process-local balance cache for single-instance
// deployments and tests
type InMemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]balanceEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryBalanceCache creates an in-memory balance cache
func NewInMemoryBalanceCache(ttl time.Duration) *InMemoryBalanceCache {
	return &InMemoryBalanceCache{
		entries: make(map[uuid.UUID]balanceEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached totals unless missing or expired
func (c *InMemoryBalanceCache) Get(_ context.Context, enrollmentID uuid.UUID) (*billing.Totals, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[enrollmentID]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	totals := e.totals
	return &totals, true, nil
}

// Set stores totals, replacing any previous entry
func (c *InMemoryBalanceCache) Set(_ context.Context, totals billing.Totals) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[totals.EnrollmentID] = balanceEntry{
		totals:    totals,
		expiresAt: c.now().Add(c.ttl),
	}
	c.evictExpiredLocked()
	return nil
}

// Invalidate drops the entry of an enrollment
func (c *InMemoryBalanceCache) Invalidate(_ context.Context, enrollmentID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, enrollmentID)
	return nil
}

// Len returns the number of live entries
func (c *InMemoryBalanceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *InMemoryBalanceCache) evictExpiredLocked() {
	now := c.now()
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

var (
	_ billing.BalanceCache = (*RedisBalanceCache)(nil)
	_ billing.BalanceCache = (*InMemoryBalanceCache)(nil)
)
