package speech

import (
	"context"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// mockAudio is the ID3 header of an empty mp3 file.
var mockAudio = []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

type MockProvider struct {
	logger *zap.Logger
}

func NewMockProvider(logger *zap.Logger) *MockProvider {
	return &MockProvider{logger: logger}
}

func (p *MockProvider) Name() string {
	return config.SpeechProviderMock
}

func (p *MockProvider) SpeechToText(ctx context.Context, audio []byte) (string, error) {
	ctxzap.Info(ctx, "[MOCK] transcribing audio", zap.Int("audio_size", len(audio)))
	return "¿Cuál es el horario de atención?", nil
}

func (p *MockProvider) TextToSpeech(ctx context.Context, text string) ([]byte, string, error) {
	ctxzap.Info(ctx, "[MOCK] synthesizing speech", zap.Int("text_length", len(text)))
	out := make([]byte, len(mockAudio))
	copy(out, mockAudio)
	return out, "mp3", nil
}
