package main

import (
	"context"
	"errors"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
)

// initMetrics initialises the metric provider and the calculator's metric
// instruments, including the gauge observing history.
func initMetrics(ctx context.Context, exporter string, history *calculator.HistoryLog) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx, exporter)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	reg, err := calculator.RegisterHistoryMetrics(history)
	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	return func(ctx context.Context) error {
		return errors.Join(reg.Unregister(), shutdown(ctx))
	}, nil
}
