package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/promo"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/session"
)

const version = "2.0"

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	logShutdown, err := observability.InitLogging(ctx, cfg.LogsExporter)
	if err != nil {
		panic(err)
	}
	defer logShutdown(ctx)

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx, cfg.TracesExporter)
	if err != nil {
		panic(err)
	}
	defer traceShutdown(ctx)

	// Core
	registry, err := calculator.NewRegistry(cfg.Policy())
	if err != nil {
		panic(err)
	}
	history := calculator.NewHistoryLog()
	svc := calculator.NewService(registry, history, promo.NewGenerator(nil, nil), nil)

	sessions, err := session.NewCookieStore(session.StoreConfig{
		Secret: []byte(cfg.SessionSecret),
		TTL:    cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
	})
	if err != nil {
		panic(err)
	}
	if cfg.SessionSecret == "" {
		observability.Logger.Warn("CALC_SESSION_SECRET not set, sessions will not survive a restart")
	}

	// Metrics
	metricShutdown, err := initMetrics(ctx, cfg.MetricsExporter, history)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	// Router
	router := server.NewRouter(server.Deps{
		Calculator: calculator.NewHandler(svc, sessions, cfg.HistoryDefaultLimit),
		Health: handlers.HealthInfo{
			Service:             observability.ServiceName(),
			Version:             version,
			OperationsSupported: len(calculator.Catalog()),
			HistoryEntries:      history.Size,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("divide_by_zero", string(cfg.DivideByZero)),
			zap.String("missing_operand", string(cfg.MissingOperand)),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
}
