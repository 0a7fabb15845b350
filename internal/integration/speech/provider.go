package speech

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/rag-gateway/internal/config"
	"go.uber.org/zap"
)

// Provider converts between audio and text. Implementations are
// interchangeable and chosen once at startup.
type Provider interface {
	Name() string
	SpeechToText(ctx context.Context, audio []byte) (string, error)
	TextToSpeech(ctx context.Context, text string) (audio []byte, format string, err error)
}

// New selects the provider named by SPEECH_PROVIDER.
func New(cfg *config.Config, logger *zap.Logger) (Provider, error) {
	switch cfg.SpeechCfg.Provider {
	case config.SpeechProviderAzure:
		return NewAzureProvider(cfg.AzureSpeech, logger)
	case config.SpeechProviderElevenLabs:
		return NewElevenLabsProvider(cfg.ElevenLabsCfg, logger)
	case config.SpeechProviderMock, "":
		return NewMockProvider(logger), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.SpeechCfg.Provider)
	}
}

func marshalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return b, nil
}
