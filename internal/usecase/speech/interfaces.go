package speech

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

// Transcoder is the audio/text provider resolved at startup.
type Transcoder interface {
	Name() string
	SpeechToText(ctx context.Context, audio []byte) (string, error)
	TextToSpeech(ctx context.Context, text string) ([]byte, string, error)
}

type Tracker interface {
	Track(ctx context.Context, ev entity.TelemetryEvent)
}
