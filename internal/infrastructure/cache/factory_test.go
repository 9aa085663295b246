package cache

import (
	"testing"
	"time"

	"github.com/academy/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func billingConfig() config.BillingConfig {
	return config.BillingConfig{
		SerializePostings: true,
		LockTTL:           30 * time.Second,
		LockWait:          5 * time.Second,
		BalanceCacheTTL:   10 * time.Minute,
	}
}

// unreachableRedis points at a closed port so the ping fails fast
func unreachableRedis() config.RedisConfig {
	return config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
}

func TestFactory_Create(t *testing.T) {
	t.Run("in-memory when redis disabled", func(t *testing.T) {
		c, err := NewFactory(config.RedisConfig{}, billingConfig()).Create()
		require.NoError(t, err)

		assert.IsType(t, &InMemoryBalanceCache{}, c.BalanceCache)
		assert.IsType(t, &InMemoryPostingLock{}, c.PostingLock)
		assert.Nil(t, c.Client)
		assert.NoError(t, c.Close())
	})

	t.Run("noop lock when serialization is off", func(t *testing.T) {
		cfg := billingConfig()
		cfg.SerializePostings = false

		c, err := NewFactory(config.RedisConfig{}, cfg).Create()
		require.NoError(t, err)
		assert.IsType(t, NoopPostingLock{}, c.PostingLock)
	})

	t.Run("falls back with a warning when redis is unreachable", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)

		c, err := NewFactory(unreachableRedis(), billingConfig(), WithLogger(zap.New(core))).Create()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryPostingLock{}, c.PostingLock)
		assert.Equal(t, 1, logs.FilterMessageSnippet("falling back").Len())
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		_, err := NewFactory(unreachableRedis(), billingConfig(), WithInMemoryFallback(false)).Create()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})
}
