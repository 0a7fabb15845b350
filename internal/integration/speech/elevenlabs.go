package speech

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/integration/common"
	pkghttp "github.com/futig/rag-gateway/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	elevenLabsDefaultURL = "https://api.elevenlabs.io"
	elevenLabsKeyHeader  = "xi-api-key"
	elevenLabsTTSPath    = "/v1/text-to-speech/"
	elevenLabsSTTPath    = "/v1/speech-to-text"
)

type elevenLabsTTSRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

type elevenLabsSTTResponse struct {
	Text string `json:"text"`
}

// ElevenLabsProvider uses the ElevenLabs HTTP API for both directions.
type ElevenLabsProvider struct {
	connector  *pkghttp.Connector
	voiceID    string
	ttsModelID string
	sttModelID string
	logger     *zap.Logger
}

func NewElevenLabsProvider(cfg config.ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("elevenlabs api key is required")
	}
	if cfg.VoiceID == "" {
		return nil, errors.New("elevenlabs voice id is required")
	}
	if cfg.Url == "" {
		cfg.Url = elevenLabsDefaultURL
	}

	return &ElevenLabsProvider{
		connector:  common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAPIKeyHeader(elevenLabsKeyHeader, cfg.APIKey)),
		voiceID:    cfg.VoiceID,
		ttsModelID: cfg.TTSModelID,
		sttModelID: cfg.STTModelID,
		logger:     logger,
	}, nil
}

func (p *ElevenLabsProvider) Name() string {
	return config.SpeechProviderElevenLabs
}

func (p *ElevenLabsProvider) SpeechToText(ctx context.Context, audio []byte) (string, error) {
	var resp elevenLabsSTTResponse
	err := p.connector.DoMultipartRequest(ctx, http.MethodPost, elevenLabsSTTPath, func(w *multipart.Writer) error {
		if err := w.WriteField("model_id", p.sttModelID); err != nil {
			return err
		}
		part, err := w.CreateFormFile("file", "audio.wav")
		if err != nil {
			return err
		}
		_, err = part.Write(audio)
		return err
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: elevenlabs transcription: %w", entity.ErrUpstreamFailure, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", entity.ErrSpeechNotRecognized
	}

	ctxzap.Debug(ctx, "elevenlabs transcription completed", zap.Int("text_length", len(text)))
	return text, nil
}

func (p *ElevenLabsProvider) TextToSpeech(ctx context.Context, text string) ([]byte, string, error) {
	body := elevenLabsTTSRequest{Text: text, ModelID: p.ttsModelID}

	audio, err := p.doTTS(ctx, body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: elevenlabs synthesis: %w", entity.ErrUpstreamFailure, err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("%w: elevenlabs synthesis returned no audio", entity.ErrUpstreamFailure)
	}
	return audio, "mp3", nil
}

func (p *ElevenLabsProvider) doTTS(ctx context.Context, body elevenLabsTTSRequest) ([]byte, error) {
	payload, err := marshalJSON(body)
	if err != nil {
		return nil, err
	}
	return p.connector.DoRawRequest(ctx, http.MethodPost, elevenLabsTTSPath+p.voiceID, "application/json", payload,
		pkghttp.WithAccept("audio/mpeg"))
}
