package calculator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments, initialized once via InitMetrics(). They default to
// no-ops so the package is usable before metrics are wired.
var (
	opsCounter    metric.Int64Counter     = noop.Int64Counter{}
	opsHistogram  metric.Float64Histogram = noop.Float64Histogram{}
	errorCounter  metric.Int64Counter     = noop.Int64Counter{}
	resultGauge   metric.Float64Gauge     = noop.Float64Gauge{}
	unlockCounter metric.Int64Counter     = noop.Int64Counter{}
	promoCounter  metric.Int64Counter     = noop.Int64Counter{}
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculator operations performed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("calculator.operation.duration",
		metric.WithDescription("Duration of calculator operations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last calculator operation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	unlockCounter, err = meter.Int64Counter("session.unlocks.total",
		metric.WithDescription("Clients moved to the unlocked state"),
		metric.WithUnit("{client}"),
	)
	if err != nil {
		return fmt.Errorf("creating unlock counter: %w", err)
	}

	promoCounter, err = meter.Int64Counter("promo.shown.total",
		metric.WithDescription("Promo payloads generated for a response"),
		metric.WithUnit("{payload}"),
	)
	if err != nil {
		return fmt.Errorf("creating promo counter: %w", err)
	}

	return nil
}

// RegisterHistoryMetrics exposes the size of h as an observable gauge.
func RegisterHistoryMetrics(h *HistoryLog) (metric.Registration, error) {
	meter := otel.Meter("calculator")

	gauge, err := meter.Int64ObservableGauge("calculator.history.entries",
		metric.WithDescription("Number of records in the calculation history"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating history gauge: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(h.Size()))
		return nil
	}, gauge)
	if err != nil {
		return nil, fmt.Errorf("registering history gauge: %w", err)
	}

	return reg, nil
}
