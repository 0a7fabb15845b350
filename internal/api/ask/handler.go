package ask

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	query         QueryUsecase
	conversations ConversationUsecase
	rs            *response.Responder
}

func NewHandler(query QueryUsecase, conversations ConversationUsecase, rs *response.Responder) *Handler {
	return &Handler{
		query:         query,
		conversations: conversations,
		rs:            rs,
	}
}

// Ask handles POST /ask
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rs.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	answer, err := h.query.Answer(ctx, &req)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	h.rs.Success(w, &entity.AskResponse{
		Answer:         answer.Text,
		ConversationID: answer.ConversationID,
		ResponseTimeMs: answer.ResponseTimeMs,
		Timestamp:      answer.AnsweredAt.UTC().Format(time.RFC3339),
	})
}

// History handles GET /history/{conversationId}
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")
	ctx := logger.AddFields(r.Context(),
		zap.String("conversation_id", conversationID),
		zap.String("action", "History"),
	)

	turns, err := h.conversations.History(ctx, conversationID)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	h.rs.Success(w, &entity.HistoryResponse{Conversations: turns})
}
