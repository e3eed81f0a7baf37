package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /api prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/calculate", h.Calculate)
		r.Post("/calculate", h.Calculate)
		r.Post("/chain", h.Chain)
		r.Get("/history", h.History)
		r.Post("/history/clear", h.ClearHistory)
		r.Get("/operations", h.Operations)
		r.Post("/activate_pro", h.Activate)
		r.Get("/joke", h.Joke)
	})
}
