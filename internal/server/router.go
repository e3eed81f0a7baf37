package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// Deps are the handlers the router mounts.
type Deps struct {
	Calculator *calculator.Handler
	Health     handlers.HealthInfo
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health(deps.Health))

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, deps.Calculator)

	return r
}
