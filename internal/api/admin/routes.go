package admin

import "github.com/go-chi/chi/v5"

// RegisterPublicRoutes registers the routes reachable without a session.
func RegisterPublicRoutes(r chi.Router, h *Handler) {
	r.Post("/admin/login", h.Login)
}

// RegisterRoutes expects r to be mounted at /admin behind auth.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/logout", h.Logout)
	r.Get("/conversations/{conversationId}/export", h.ExportConversation)
}
