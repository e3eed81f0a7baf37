// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
)

// Config is the full service configuration.
type Config struct {
	Addr            string        `env:"CALC_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"CALC_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	LogLevel        string        `env:"CALC_LOG_LEVEL" envDefault:"info"`

	DivideByZero   calculator.DivideByZero   `env:"CALC_DIVIDE_BY_ZERO" envDefault:"error"`
	MissingOperand calculator.MissingOperand `env:"CALC_MISSING_OPERAND" envDefault:"reject"`

	HistoryDefaultLimit int `env:"CALC_HISTORY_DEFAULT_LIMIT" envDefault:"10"`

	SessionSecret       string        `env:"CALC_SESSION_SECRET"`
	SessionTTL          time.Duration `env:"CALC_SESSION_TTL" envDefault:"720h"`
	SessionCookieSecure bool          `env:"CALC_SESSION_COOKIE_SECURE" envDefault:"false"`

	TracesExporter  string `env:"OTEL_TRACES_EXPORTER" envDefault:"otlp"`
	MetricsExporter string `env:"OTEL_METRICS_EXPORTER" envDefault:"prometheus"`
	LogsExporter    string `env:"OTEL_LOGS_EXPORTER" envDefault:"none"`
}

// Load parses Config from the process environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Policy returns the evaluation policy selected by the configuration.
func (c Config) Policy() calculator.Policy {
	return calculator.Policy{DivideByZero: c.DivideByZero, MissingOperand: c.MissingOperand}
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.HistoryDefaultLimit <= 0 {
		return fmt.Errorf("CALC_HISTORY_DEFAULT_LIMIT must be positive, got %d", c.HistoryDefaultLimit)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("CALC_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("CALC_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}

	exporters := []struct {
		key, value string
		allowed    []string
	}{
		{"OTEL_TRACES_EXPORTER", c.TracesExporter, []string{observability.ExporterOTLP, observability.ExporterStdout, observability.ExporterNone}},
		{"OTEL_METRICS_EXPORTER", c.MetricsExporter, []string{observability.ExporterOTLP, observability.ExporterPrometheus, observability.ExporterNone}},
		{"OTEL_LOGS_EXPORTER", c.LogsExporter, []string{observability.ExporterOTLP, observability.ExporterNone}},
	}
	for _, e := range exporters {
		if !slices.Contains(e.allowed, e.value) {
			return fmt.Errorf("%s: unsupported value %q (want one of %v)", e.key, e.value, e.allowed)
		}
	}
	return nil
}
