package cache

import (
	"fmt"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory builds the balance cache and posting lock, backed by Redis when it
// is enabled and reachable, in-memory otherwise
type Factory struct {
	redisConfig           config.RedisConfig
	billingConfig         config.BillingConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory implementations. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(redisCfg config.RedisConfig, billingCfg config.BillingConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		billingConfig:         billingCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Components is what the factory produces. Client is nil when Redis is not used.
type Components struct {
	BalanceCache billing.BalanceCache
	PostingLock  billing.PostingLock
	Client       *redis.Client
}

// Close releases the Redis client, if any
func (c *Components) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// Create connects to Redis when enabled and builds the components
func (f *Factory) Create() (*Components, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory balance cache and posting lock")
		return f.inMemory(), nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for posting lock but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory balance cache and posting lock. "+
			"Postings are only serialized within this instance.",
			zap.Error(err),
		)
		return f.inMemory(), nil
	}

	f.logger.Info("using Redis balance cache and posting lock",
		zap.String("addr", f.redisConfig.Addr()),
	)
	c := &Components{
		BalanceCache: NewRedisBalanceCache(client, f.billingConfig.BalanceCacheTTL),
		PostingLock:  NewRedisPostingLock(client, f.billingConfig.LockTTL, f.billingConfig.LockWait, f.logger),
		Client:       client,
	}
	if !f.billingConfig.SerializePostings {
		c.PostingLock = NoopPostingLock{}
	}
	return c, nil
}

func (f *Factory) inMemory() *Components {
	c := &Components{
		BalanceCache: NewInMemoryBalanceCache(f.billingConfig.BalanceCacheTTL),
		PostingLock:  NewInMemoryPostingLock(f.billingConfig.LockWait),
	}
	if !f.billingConfig.SerializePostings {
		c.PostingLock = NoopPostingLock{}
	}
	return c
}
