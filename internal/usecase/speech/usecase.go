package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	eventSTTSuccess   = "stt.success"
	eventSTTException = "stt.exception"
	eventTTSSuccess   = "tts.success"
	eventTTSException = "tts.exception"
)

type SpeechUsecase struct {
	provider  Transcoder
	validator *validator.Validator
	tracker   Tracker
	timeout   time.Duration
	now       func() time.Time
}

func NewUsecase(provider Transcoder, validator *validator.Validator, tracker Tracker, timeout time.Duration) *SpeechUsecase {
	return &SpeechUsecase{
		provider:  provider,
		validator: validator,
		tracker:   tracker,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Transcribe decodes base64 audio and turns it into text.
func (uc *SpeechUsecase) Transcribe(ctx context.Context, audioData string) (*entity.Transcription, error) {
	audio, err := validator.DecodeAudio(audioData)
	if err != nil {
		return nil, err
	}
	return uc.TranscribeAudio(ctx, audio)
}

// TranscribeAudio turns raw audio bytes into text.
func (uc *SpeechUsecase) TranscribeAudio(ctx context.Context, audio []byte) (*entity.Transcription, error) {
	if err := uc.validator.ValidateAudio(audio); err != nil {
		return nil, err
	}

	callCtx, cancel := uc.withTimeout(ctx)
	defer cancel()

	start := uc.now()
	text, err := uc.provider.SpeechToText(callCtx, audio)
	elapsed := uc.now().Sub(start).Milliseconds()
	if err != nil {
		uc.track(ctx, entity.TelemetryEvent{Name: eventSTTException, ResponseTimeMs: elapsed, Err: err,
			Attributes: map[string]string{"provider": uc.provider.Name()}})
		if errors.Is(err, entity.ErrSpeechNotRecognized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: speech to text: %w", entity.ErrUpstreamFailure, err)
	}

	uc.track(ctx, entity.TelemetryEvent{Name: eventSTTSuccess, Success: true, ResponseTimeMs: elapsed,
		Attributes: map[string]string{"provider": uc.provider.Name()}})
	ctxzap.Info(ctx, "audio transcribed",
		zap.String("provider", uc.provider.Name()),
		zap.Int("audio_size", len(audio)),
		zap.Int64("response_time_ms", elapsed),
	)

	return &entity.Transcription{Text: text, ResponseTimeMs: elapsed}, nil
}

// Synthesize renders text as audio. Whitespace-only text is rejected.
func (uc *SpeechUsecase) Synthesize(ctx context.Context, text string) (*entity.Synthesis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", entity.ErrInvalidInput)
	}

	callCtx, cancel := uc.withTimeout(ctx)
	defer cancel()

	start := uc.now()
	audio, format, err := uc.provider.TextToSpeech(callCtx, text)
	elapsed := uc.now().Sub(start).Milliseconds()
	if err == nil && len(audio) == 0 {
		err = errors.New("provider returned no audio")
	}
	if err != nil {
		uc.track(ctx, entity.TelemetryEvent{Name: eventTTSException, ResponseTimeMs: elapsed, Err: err,
			Attributes: map[string]string{"provider": uc.provider.Name()}})
		return nil, fmt.Errorf("%w: text to speech: %w", entity.ErrUpstreamFailure, err)
	}

	uc.track(ctx, entity.TelemetryEvent{Name: eventTTSSuccess, Success: true, ResponseTimeMs: elapsed,
		Attributes: map[string]string{"provider": uc.provider.Name()}})
	ctxzap.Info(ctx, "speech synthesized",
		zap.String("provider", uc.provider.Name()),
		zap.Int("text_length", len(text)),
		zap.Int64("response_time_ms", elapsed),
	)

	return &entity.Synthesis{Audio: audio, Format: format, ResponseTimeMs: elapsed}, nil
}

func (uc *SpeechUsecase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

func (uc *SpeechUsecase) track(ctx context.Context, ev entity.TelemetryEvent) {
	if uc.tracker == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = uc.now()
	}
	go uc.tracker.Track(logger.Detach(ctx), ev)
}
