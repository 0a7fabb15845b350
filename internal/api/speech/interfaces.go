package speech

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type SpeechUsecase interface {
	Transcribe(ctx context.Context, audioData string) (*entity.Transcription, error)
	Synthesize(ctx context.Context, text string) (*entity.Synthesis, error)
}
