package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument describes one counter or histogram. Buckets only apply to
// histograms; empty means the SDK defaults.
type Instrument struct {
	Name        string
	Description string
	Unit        string
	Buckets     []float64
}

// Counter is a monotonically increasing int64 metric.
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter registers in on meter.
func NewCounter(meter metric.Meter, in Instrument) (*Counter, error) {
	c, err := meter.Int64Counter(in.Name, metric.WithDescription(in.Description), metric.WithUnit(in.Unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", in.Name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc increments the counter by 1.
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram records a distribution of float64 values.
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram registers in on meter.
func NewHistogram(meter metric.Meter, in Instrument) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(in.Description),
		metric.WithUnit(in.Unit),
	}
	if len(in.Buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(in.Buckets...))
	}
	h, err := meter.Float64Histogram(in.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", in.Name, err)
	}
	return &Histogram{histogram: h}, nil
}

// Record records a value to the histogram.
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// RecordDuration records d in seconds.
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// Billing attribute keys
var (
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrCurrency      = attribute.Key("currency")
	AttrRejectionCode = attribute.Key("rejection_code")
	AttrOutcome       = attribute.Key("outcome")
)

// HTTP attribute keys
var (
	AttrHTTPMethod     = attribute.Key("http_method")
	AttrHTTPRoute      = attribute.Key("http_route")
	AttrHTTPStatusCode = attribute.Key("http_status_code")
)

// Latency buckets in seconds
var (
	PostingDurationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	HTTPDurationBuckets    = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)
