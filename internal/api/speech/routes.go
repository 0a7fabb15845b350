package speech

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/stt", h.SpeechToText)
	r.Post("/tts", h.TextToSpeech)
}
