package ask

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/ask", h.Ask)
	r.Get("/history/{conversationId}", h.History)
}
