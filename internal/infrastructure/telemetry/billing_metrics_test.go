package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestBillingMetrics(t *testing.T) (*telemetry.BillingMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	bm, err := telemetry.NewBillingMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return nil
}

func sumByAttr(t *testing.T, data metricdata.Aggregation, key attribute.Key) map[string]int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(key)
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestNewBillingMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBillingMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBillingMetrics_RecordPaymentPosted(t *testing.T) {
	bm, reader := newTestBillingMetrics(t)
	ctx := context.Background()

	bm.RecordPaymentPosted(ctx, "cash", "MXN", decimal.RequireFromString("600.00"))
	bm.RecordPaymentPosted(ctx, "cash", "MXN", decimal.RequireFromString("400.00"))
	bm.RecordPaymentPosted(ctx, "transfer", "MXN", decimal.RequireFromString("1500.00"))

	counts := sumByAttr(t, collect(t, reader, "academy_payments_posted_total"), telemetry.AttrPaymentMethod)
	assert.Equal(t, map[string]int64{"cash": 2, "transfer": 1}, counts)

	hist, ok := collect(t, reader, "academy_payment_amount").(metricdata.Histogram[float64])
	require.True(t, ok)
	var total float64
	var n uint64
	for _, dp := range hist.DataPoints {
		total += dp.Sum
		n += dp.Count
	}
	assert.Equal(t, uint64(3), n)
	assert.InDelta(t, 2500.0, total, 0.001)
}

func TestBillingMetrics_RecordPaymentRejected(t *testing.T) {
	bm, reader := newTestBillingMetrics(t)
	ctx := context.Background()

	bm.RecordPaymentRejected(ctx, "allocation_exceeds_pending")
	bm.RecordPaymentRejected(ctx, "allocation_exceeds_pending")
	bm.RecordPaymentRejected(ctx, "no_pending_charges")

	counts := sumByAttr(t, collect(t, reader, "academy_payment_rejections_total"), telemetry.AttrRejectionCode)
	assert.Equal(t, int64(2), counts["allocation_exceeds_pending"])
	assert.Equal(t, int64(1), counts["no_pending_charges"])
}

func TestBillingMetrics_RecordCompensation(t *testing.T) {
	bm, reader := newTestBillingMetrics(t)
	ctx := context.Background()

	bm.RecordCompensation(ctx, true)
	bm.RecordCompensation(ctx, false)

	counts := sumByAttr(t, collect(t, reader, "academy_payment_compensations_total"), telemetry.AttrOutcome)
	assert.Equal(t, int64(1), counts[telemetry.OutcomeCompensated])
	assert.Equal(t, int64(1), counts[telemetry.OutcomeOrphaned])
}

func TestBillingMetrics_ChargesAndDuration(t *testing.T) {
	bm, reader := newTestBillingMetrics(t)
	ctx := context.Background()

	bm.RecordChargeCreated(ctx, "MXN")
	bm.RecordPostingDuration(ctx, 40*time.Millisecond, telemetry.OutcomePosted)

	counts := sumByAttr(t, collect(t, reader, "academy_charges_created_total"), telemetry.AttrCurrency)
	assert.Equal(t, int64(1), counts["MXN"])

	hist, ok := collect(t, reader, "academy_payment_posting_duration_seconds").(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.InDelta(t, 0.04, hist.DataPoints[0].Sum, 0.0001)
}
