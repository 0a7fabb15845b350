package chat

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/futig/rag-gateway/internal/pkg/validator"
)

type Handler struct {
	usecase ChatUsecase
	rs      *response.Responder
	maxBody int64
}

func NewHandler(usecase ChatUsecase, rs *response.Responder, maxBody int64) *Handler {
	return &Handler{usecase: usecase, rs: rs, maxBody: maxBody}
}

// Message handles POST /api/messages
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Message")

	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req entity.MessageRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.rs.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	msg := &entity.ChatMessage{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Text:           req.Message,
		WantAudio:      req.WantAudio,
	}
	if strings.TrimSpace(req.AudioBase64) != "" {
		audio, err := validator.DecodeAudio(req.AudioBase64)
		if err != nil {
			h.rs.FromError(ctx, w, err)
			return
		}
		msg.Audio = audio
	}

	reply, err := h.usecase.Reply(ctx, msg)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	resp := &entity.MessageResponse{
		Reply:          reply.Text,
		Transcript:     reply.Transcript,
		ConversationID: reply.ConversationID,
	}
	if len(reply.Audio) > 0 {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(reply.Audio)
		resp.AudioFormat = reply.AudioFormat
	}
	h.rs.Success(w, resp)
}
