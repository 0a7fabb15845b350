package speech

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/integration/common"
	pkghttp "github.com/futig/rag-gateway/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	azureRecognitionPath = "/speech/recognition/conversation/cognitiveservices/v1"
	azureSynthesisPath   = "/cognitiveservices/v1"
	azureKeyHeader       = "Ocp-Apim-Subscription-Key"
	azureAudioWAV        = "audio/wav; codecs=audio/pcm; samplerate=16000"

	recognitionSuccess = "Success"
	recognitionNoMatch = "NoMatch"
)

type azureRecognition struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
}

// AzureProvider talks to the Azure Cognitive Services speech REST endpoints.
type AzureProvider struct {
	connector    *pkghttp.Connector
	sttURL       string
	ttsURL       string
	language     string
	voice        string
	outputFormat string
	logger       *zap.Logger
}

// NewAzureProvider derives the regional endpoints unless SERVICE_URL points
// both calls at one host.
func NewAzureProvider(cfg config.AzureSpeechConfig, logger *zap.Logger) (*AzureProvider, error) {
	if cfg.Key == "" {
		return nil, errors.New("azure speech key is required")
	}
	if cfg.Region == "" && cfg.Url == "" {
		return nil, errors.New("azure speech region is required")
	}

	sttBase := fmt.Sprintf("https://%s.stt.speech.microsoft.com", cfg.Region)
	ttsBase := fmt.Sprintf("https://%s.tts.speech.microsoft.com", cfg.Region)
	if cfg.Url != "" {
		sttBase, ttsBase = cfg.Url, cfg.Url
	}

	return &AzureProvider{
		connector:    common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAPIKeyHeader(azureKeyHeader, cfg.Key)),
		sttURL:       sttBase + azureRecognitionPath + "?" + url.Values{"language": {cfg.Language}}.Encode(),
		ttsURL:       ttsBase + azureSynthesisPath,
		language:     cfg.Language,
		voice:        cfg.Voice,
		outputFormat: cfg.OutputFormat,
		logger:       logger,
	}, nil
}

func (p *AzureProvider) Name() string {
	return config.SpeechProviderAzure
}

func (p *AzureProvider) SpeechToText(ctx context.Context, audio []byte) (string, error) {
	raw, err := p.connector.DoRawRequest(ctx, http.MethodPost, "", azureAudioWAV, audio, pkghttp.WithURL(p.sttURL))
	if err != nil {
		return "", fmt.Errorf("%w: azure recognition: %w", entity.ErrUpstreamFailure, err)
	}

	var rec azureRecognition
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("%w: decode azure recognition: %w", entity.ErrUpstreamFailure, err)
	}

	switch rec.RecognitionStatus {
	case recognitionSuccess:
	case recognitionNoMatch:
		return "", entity.ErrSpeechNotRecognized
	default:
		return "", fmt.Errorf("%w: azure recognition status %q", entity.ErrUpstreamFailure, rec.RecognitionStatus)
	}

	text := strings.TrimSpace(rec.DisplayText)
	if text == "" {
		return "", entity.ErrSpeechNotRecognized
	}

	ctxzap.Debug(ctx, "azure recognition completed", zap.Int("text_length", len(text)))
	return text, nil
}

func (p *AzureProvider) TextToSpeech(ctx context.Context, text string) ([]byte, string, error) {
	ssml, err := p.ssml(text)
	if err != nil {
		return nil, "", err
	}

	audio, err := p.connector.DoRawRequest(ctx, http.MethodPost, "", "application/ssml+xml", ssml,
		pkghttp.WithURL(p.ttsURL),
		pkghttp.WithAccept("*/*"),
		pkghttp.WithHeader("X-Microsoft-OutputFormat", p.outputFormat),
	)
	if err != nil {
		return nil, "", fmt.Errorf("%w: azure synthesis: %w", entity.ErrUpstreamFailure, err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("%w: azure synthesis returned no audio", entity.ErrUpstreamFailure)
	}

	return audio, formatFromAzure(p.outputFormat), nil
}

func (p *AzureProvider) ssml(text string) ([]byte, error) {
	var escaped strings.Builder
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return nil, fmt.Errorf("escape ssml text: %w", err)
	}

	doc := fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		p.language, p.voice, escaped.String(),
	)
	return []byte(doc), nil
}

func formatFromAzure(outputFormat string) string {
	switch {
	case strings.HasSuffix(outputFormat, "mp3"):
		return "mp3"
	case strings.HasPrefix(outputFormat, "riff"):
		return "wav"
	case strings.Contains(outputFormat, "opus"):
		return "ogg"
	default:
		return "mp3"
	}
}
