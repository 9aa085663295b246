package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Metrics receives the business counters emitted by the billing services.
// telemetry.BillingMetrics satisfies it.
type Metrics interface {
	RecordPaymentPosted(ctx context.Context, method, currency string, amount decimal.Decimal)
	RecordPaymentRejected(ctx context.Context, code string)
	RecordCompensation(ctx context.Context, ok bool)
	RecordChargeCreated(ctx context.Context, currency string)
	RecordPostingDuration(ctx context.Context, d time.Duration, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordPaymentPosted(context.Context, string, string, decimal.Decimal) {}
func (nopMetrics) RecordPaymentRejected(context.Context, string) {}
func (nopMetrics) RecordCompensation(context.Context, bool) {}
func (nopMetrics) RecordChargeCreated(context.Context, string) {}
func (nopMetrics) RecordPostingDuration(context.Context, time.Duration, string) {}

type serviceOptions struct {
	metrics Metrics
	now     func() time.Time
}

// Option configures optional service collaborators
type Option func(*serviceOptions)

// WithMetrics records business metrics on m
func WithMetrics(m Metrics) Option {
	return func(o *serviceOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock replaces time.Now, used by tests to pin "today"
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) serviceOptions {
	o := serviceOptions{metrics: nopMetrics{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
