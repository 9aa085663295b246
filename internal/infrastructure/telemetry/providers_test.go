package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup_AllSignalsDisabled(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)

	p, err := Setup(ctx, Options{ServiceName: "academy-billing", SamplingRatio: 1}, zap.New(core))
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.NotNil(t, p.Meter())
	assert.False(t, p.LogCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, p.Shutdown(ctx))
	assert.Equal(t, 1, logs.FilterMessage("OpenTelemetry export disabled").Len())
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.5, "root:AlwaysOnSampler"},
		{1, "root:AlwaysOnSampler"},
		{0, "root:AlwaysOffSampler"},
		{-1, "root:AlwaysOffSampler"},
		{0.25, "root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		assert.Contains(t, newSampler(tt.ratio).Description(), tt.want)
	}
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	log := zap.New(core).With(zap.String("service", "billing"))

	log.Debug("cache miss")
	log.Info("payment posted")
	log.Warn("capability denied")
	log.Error("compensating delete failed")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "capability denied", logs.All()[0].Message)
	assert.Equal(t, "billing", logs.All()[1].ContextMap()["service"])
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}
