package speech

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
)

type Handler struct {
	usecase SpeechUsecase
	rs      *response.Responder
	maxBody int64
}

// NewHandler caps request bodies at maxBody bytes; base64 audio is about a
// third larger than the decoded limit, so callers pass a margin.
func NewHandler(usecase SpeechUsecase, rs *response.Responder, maxBody int64) *Handler {
	return &Handler{usecase: usecase, rs: rs, maxBody: maxBody}
}

// SpeechToText handles POST /stt
func (h *Handler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SpeechToText")

	var req entity.STTRequest
	if err := h.decode(w, r, &req); err != nil {
		h.rs.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	out, err := h.usecase.Transcribe(ctx, req.AudioData)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	h.rs.Success(w, &entity.STTResponse{
		Text:           out.Text,
		Success:        true,
		ResponseTimeMs: out.ResponseTimeMs,
	})
}

// TextToSpeech handles POST /tts
func (h *Handler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "TextToSpeech")

	var req entity.TTSRequest
	if err := h.decode(w, r, &req); err != nil {
		h.rs.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	out, err := h.usecase.Synthesize(ctx, req.Text)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	h.rs.Success(w, &entity.TTSResponse{
		Success:        true,
		Audio:          base64.StdEncoding.EncodeToString(out.Audio),
		Format:         out.Format,
		ResponseTimeMs: out.ResponseTimeMs,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	return json.NewDecoder(body).Decode(v)
}
