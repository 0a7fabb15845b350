package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const corsMaxAge = 300

// CORS allows any origin without credentials. Preflight requests are
// answered before routing, so /admin preflights skip the auth check.
func CORS() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:       []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:       []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials:     false,
		MaxAge:               corsMaxAge,
		OptionsSuccessStatus: http.StatusNoContent,
	})
}
