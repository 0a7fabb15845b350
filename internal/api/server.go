package api

import (
	"net/http"
	"time"

	adminapi "github.com/futig/rag-gateway/internal/api/admin"
	askapi "github.com/futig/rag-gateway/internal/api/ask"
	chatapi "github.com/futig/rag-gateway/internal/api/chat"
	"github.com/futig/rag-gateway/internal/api/docs"
	documentapi "github.com/futig/rag-gateway/internal/api/document"
	"github.com/futig/rag-gateway/internal/api/middleware"
	speechapi "github.com/futig/rag-gateway/internal/api/speech"
	systemapi "github.com/futig/rag-gateway/internal/api/system"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

type Handlers struct {
	Ask      *askapi.Handler
	Chat     *chatapi.Handler
	Speech   *speechapi.Handler
	Document *documentapi.Handler
	Admin    *adminapi.Handler
	System   *systemapi.Handler
}

// SetupRouter creates and configures the HTTP router. Every /admin route
// except login requires a bearer session.
func SetupRouter(h Handlers, auth middleware.Authenticator, rs *response.Responder, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(chimiddleware.Timeout(requestTimeout))

	docs.RegisterRoutes(r)

	askapi.RegisterRoutes(r, h.Ask)
	chatapi.RegisterRoutes(r, h.Chat)
	speechapi.RegisterRoutes(r, h.Speech)
	documentapi.RegisterRoutes(r, h.Document)
	systemapi.RegisterRoutes(r, h.System)

	adminapi.RegisterPublicRoutes(r, h.Admin)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(auth, rs))

		adminapi.RegisterRoutes(r, h.Admin)
		documentapi.RegisterAdminRoutes(r, h.Document)
		systemapi.RegisterAdminRoutes(r, h.System)
	})

	return r
}
