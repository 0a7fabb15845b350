package system

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
}

// RegisterAdminRoutes expects r to be mounted at /admin behind auth.
func RegisterAdminRoutes(r chi.Router, h *Handler) {
	r.Get("/stats", h.Stats)
}
