package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Posting outcomes recorded on academy_payment_posting_duration_seconds
const (
	OutcomePosted      = "posted"
	OutcomeRejected    = "rejected"
	OutcomeCompensated = "compensated"
	OutcomeOrphaned    = "orphaned"
)

// BillingMetrics records payment posting activity.
type BillingMetrics struct {
	paymentsPosted  *Counter
	paymentAmount   *Histogram
	rejections      *Counter
	compensations   *Counter
	chargesCreated  *Counter
	postingDuration *Histogram
}

// NewBillingMetrics creates the billing instruments on meter.
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BillingMetrics{}
	var err error

	if bm.paymentsPosted, err = NewCounter(meter, Instrument{
		Name:        "academy_payments_posted_total",
		Description: "Payments posted by staff",
		Unit:        "{payments}",
	}); err != nil {
		return nil, err
	}
	if bm.paymentAmount, err = NewHistogram(meter, Instrument{
		Name:        "academy_payment_amount",
		Description: "Amount of posted payments in major currency units",
		Unit:        "{currency_unit}",
		Buckets:     []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000},
	}); err != nil {
		return nil, err
	}
	if bm.rejections, err = NewCounter(meter, Instrument{
		Name:        "academy_payment_rejections_total",
		Description: "Payment postings rejected, by rejection code",
		Unit:        "{rejections}",
	}); err != nil {
		return nil, err
	}
	if bm.compensations, err = NewCounter(meter, Instrument{
		Name:        "academy_payment_compensations_total",
		Description: "Payments deleted after their allocations failed to persist",
		Unit:        "{payments}",
	}); err != nil {
		return nil, err
	}
	if bm.chargesCreated, err = NewCounter(meter, Instrument{
		Name:        "academy_charges_created_total",
		Description: "Charges created by staff",
		Unit:        "{charges}",
	}); err != nil {
		return nil, err
	}
	if bm.postingDuration, err = NewHistogram(meter, Instrument{
		Name:        "academy_payment_posting_duration_seconds",
		Description: "Wall time of a payment posting including lock wait",
		Unit:        "s",
		Buckets:     PostingDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordPaymentPosted counts a posted payment and its amount
func (m *BillingMetrics) RecordPaymentPosted(ctx context.Context, method, currency string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(method), AttrCurrency.String(currency)}
	m.paymentsPosted.Inc(ctx, attrs...)
	m.paymentAmount.Record(ctx, amount.InexactFloat64(), attrs...)
}

// RecordPaymentRejected counts a rejected posting by code
func (m *BillingMetrics) RecordPaymentRejected(ctx context.Context, code string) {
	m.rejections.Inc(ctx, AttrRejectionCode.String(code))
}

// RecordCompensation counts a compensating payment delete. ok is false when
// the delete itself failed and an orphan payment remains.
func (m *BillingMetrics) RecordCompensation(ctx context.Context, ok bool) {
	outcome := OutcomeCompensated
	if !ok {
		outcome = OutcomeOrphaned
	}
	m.compensations.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordChargeCreated counts a created charge
func (m *BillingMetrics) RecordChargeCreated(ctx context.Context, currency string) {
	m.chargesCreated.Inc(ctx, AttrCurrency.String(currency))
}

// RecordPostingDuration records the latency of one posting attempt
func (m *BillingMetrics) RecordPostingDuration(ctx context.Context, d time.Duration, outcome string) {
	m.postingDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
