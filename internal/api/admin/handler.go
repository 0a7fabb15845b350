package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/futig/rag-gateway/internal/api/middleware"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	admin         AdminUsecase
	conversations ConversationUsecase
	rs            *response.Responder
}

func NewHandler(admin AdminUsecase, conversations ConversationUsecase, rs *response.Responder) *Handler {
	return &Handler{
		admin:         admin,
		conversations: conversations,
		rs:            rs,
	}
}

// Login handles POST /admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AdminLogin")

	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rs.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	token, err := h.admin.Login(ctx, &req)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	h.rs.Success(w, &entity.LoginResponse{Success: true, Token: token})
}

// Logout handles POST /admin/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AdminLogout")

	token, ok := middleware.TokenFromContext(ctx)
	if !ok {
		h.rs.FromError(ctx, w, entity.ErrUnauthorized)
		return
	}
	if err := h.admin.Revoke(ctx, token); err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "admin logged out")
	h.rs.Success(w, &entity.SuccessResponse{Success: true})
}

// ExportConversation handles GET /admin/conversations/{conversationId}/export?format=md|docx|pdf
func (h *Handler) ExportConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")
	ctx := logger.AddFields(r.Context(),
		zap.String("conversation_id", conversationID),
		zap.String("action", "ExportConversation"),
	)

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	export, err := h.conversations.Export(ctx, conversationID, format)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Content); err != nil {
		ctxzap.Warn(ctx, "failed to write export", zap.Error(err))
	}
}
