package document

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the public listing.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/documents", h.ListPublic)
}

// RegisterAdminRoutes expects r to be mounted at /admin behind auth.
func RegisterAdminRoutes(r chi.Router, h *Handler) {
	r.Post("/upload-document", h.Upload)
	r.Get("/documents", h.ListAll)
	r.Delete("/documents/{documentId}", h.Delete)
}
