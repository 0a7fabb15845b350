package system

import (
	"net/http"

	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
)

type Handler struct {
	usecase MonitorUsecase
	rs      *response.Responder
}

func NewHandler(usecase MonitorUsecase, rs *response.Responder) *Handler {
	return &Handler{usecase: usecase, rs: rs}
}

// Stats handles GET /stats and GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Stats")

	stats, err := h.usecase.Stats(ctx)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}
	h.rs.Success(w, stats)
}

// Health handles GET /health. It answers 200 even when degraded; the body
// carries the per-service status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Health")
	h.rs.Success(w, h.usecase.Health(ctx))
}
