package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "billing-test"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	actorID := uuid.New()

	router := gin.New()
	router.Use(
		RequestID(),
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "billing-test"}),
		SpanErrorMarker(),
		func(c *gin.Context) {
			c.Set(ActorKey, &billing.Actor{ID: actorID})
			c.Next()
		},
		TracingAttributeInjector(),
	)
	router.GET("/enrollments/:id/ledger", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	router.GET("/rejected", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })

	t.Run("ok request carries ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/enrollments/"+uuid.NewString()+"/ledger", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		router.ServeHTTP(httptest.NewRecorder(), req)

		spans := sr.Ended()
		require.NotEmpty(t, spans)
		span := spans[len(spans)-1]
		assert.Contains(t, span.Name(), "/enrollments/:id/ledger")
		v, ok := spanAttr(span, "request_id")
		require.True(t, ok)
		assert.Equal(t, "req-42", v.AsString())
		v, ok = spanAttr(span, "actor_id")
		require.True(t, ok)
		assert.Equal(t, actorID.String(), v.AsString())
		assert.NotEqual(t, codes.Error, span.Status().Code)
	})

	t.Run("server errors mark the span", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
		spans := sr.Ended()
		assert.Equal(t, codes.Error, spans[len(spans)-1].Status().Code)
	})

	t.Run("business rejections keep an unset status", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rejected", nil))
		spans := sr.Ended()
		span := spans[len(spans)-1]
		assert.NotEqual(t, codes.Error, span.Status().Code)
		v, ok := spanAttr(span, "http.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusUnprocessableEntity), v.AsInt64())
	})
}
