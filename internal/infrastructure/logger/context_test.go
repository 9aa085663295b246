package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestContextIDs(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithActorID(ctx, "actor-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "actor-9", GetActorID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetTraceID(ctx))
}

func TestL_AddsCorrelationFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActorID(ctx, "actor-9")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	L(ctx).Info("ledger loaded")

	entries := recorded.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "actor-9", fields["actor_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
}

func TestEnrich_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Enrich(context.Background(), nil).Info("nothing")
	})
}
