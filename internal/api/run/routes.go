package run

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers pipeline run routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/pipeline-run", func(r chi.Router) {
		r.Post("/", h.StartRun)
		r.Get("/{id}", h.GetRun)
		r.Get("/{id}/result", h.GetResult)
		r.Post("/{id}/cancel", h.CancelRun)
	})
}
