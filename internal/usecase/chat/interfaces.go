package chat

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type Answerer interface {
	Answer(ctx context.Context, req *entity.AskRequest) (*entity.Answer, error)
}

type Speech interface {
	TranscribeAudio(ctx context.Context, audio []byte) (*entity.Transcription, error)
	Synthesize(ctx context.Context, text string) (*entity.Synthesis, error)
}
