// Package telemetry wires OpenTelemetry tracing, metrics and the zap log
// bridge for the billing service.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	shutdownTimeout        = 10 * time.Second
	defaultMetricsInterval = 60 * time.Second
)

// Options selects which signals are exported to the collector. All three
// share one endpoint and one service resource.
type Options struct {
	ServiceName     string
	ServiceVersion  string
	Endpoint        string
	Insecure        bool
	Traces          bool
	SamplingRatio   float64
	Metrics         bool
	MetricsInterval time.Duration
	Logs            bool
}

// Providers owns the SDK providers of every enabled signal. A disabled
// signal leaves its provider nil and the matching global stays a no-op.
type Providers struct {
	opts   Options
	traces *sdktrace.TracerProvider
	meters *sdkmetric.MeterProvider
	logs   *sdklog.LoggerProvider
}

// Setup builds the enabled providers and installs them as OpenTelemetry
// globals. On failure the providers created so far are shut down.
func Setup(ctx context.Context, opts Options, bootLog *zap.Logger) (*Providers, error) {
	p := &Providers{opts: opts}
	if !opts.Traces && !opts.Metrics && !opts.Logs {
		bootLog.Info("OpenTelemetry export disabled")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.setup(ctx, res); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}

	bootLog.Info("OpenTelemetry initialized",
		zap.String("collector_endpoint", opts.Endpoint),
		zap.String("service_name", opts.ServiceName),
		zap.Bool("traces", opts.Traces),
		zap.Float64("sampling_ratio", opts.SamplingRatio),
		zap.Bool("metrics", opts.Metrics),
		zap.Bool("logs", opts.Logs),
	)
	return p, nil
}

func (p *Providers) setup(ctx context.Context, res *resource.Resource) error {
	if p.opts.Traces {
		traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.opts.Endpoint)}
		if p.opts.Insecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, traceOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		p.traces = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(newSampler(p.opts.SamplingRatio)),
		)
		otel.SetTracerProvider(p.traces)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	if p.opts.Metrics {
		metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.opts.Endpoint)}
		if p.opts.Insecure {
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		interval := p.opts.MetricsInterval
		if interval <= 0 {
			interval = defaultMetricsInterval
		}
		p.meters = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		)
		otel.SetMeterProvider(p.meters)
	}

	if p.opts.Logs {
		logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(p.opts.Endpoint)}
		if p.opts.Insecure {
			logOpts = append(logOpts, otlploggrpc.WithInsecure())
		}
		exporter, err := otlploggrpc.New(ctx, logOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP logs exporter: %w", err)
		}
		p.logs = sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		)
		global.SetLoggerProvider(p.logs)
	}
	return nil
}

// newSampler honours the parent decision so a sampled HTTP request keeps
// every billing span below it
func newSampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0.0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// TracingEnabled reports whether spans are exported.
func (p *Providers) TracingEnabled() bool {
	return p.traces != nil
}

// Meter returns the service meter, or a no-op meter when metrics are off.
func (p *Providers) Meter() metric.Meter {
	if p.meters == nil {
		return otel.GetMeterProvider().Meter(p.opts.ServiceName)
	}
	return p.meters.Meter(p.opts.ServiceName)
}

// LogCore returns a core that forwards zap entries at or above level to the
// collector. Tee it next to the local core with logger.New.
func (p *Providers) LogCore(level zapcore.Level) zapcore.Core {
	if p.logs == nil {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(p.opts.ServiceName, otelzap.WithLoggerProvider(p.logs))
	return &levelFilterCore{Core: core, minLevel: level}
}

// Shutdown flushes and stops every provider. Logs go last so the shutdown
// of the other signals can still be reported.
func (p *Providers) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.traces != nil {
		if err := p.traces.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if p.meters != nil {
		if err := p.meters.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	if p.logs != nil {
		if err := p.logs.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("logger provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// levelFilterCore adds a minimum level to a core that has none.
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

// Enabled implements zapcore.Core.
func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.minLevel && c.Core.Enabled(lvl)
}

// Check implements zapcore.Core.
func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

// With implements zapcore.Core.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), minLevel: c.minLevel}
}
