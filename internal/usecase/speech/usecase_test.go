package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	speechprovider "github.com/futig/rag-gateway/internal/integration/speech"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingProvider struct {
	sttErr error
	tts    []byte
	ttsErr error
}

func (f *failingProvider) Name() string { return "failing" }

func (f *failingProvider) SpeechToText(context.Context, []byte) (string, error) {
	return "", f.sttErr
}

func (f *failingProvider) TextToSpeech(context.Context, string) ([]byte, string, error) {
	return f.tts, "mp3", f.ttsErr
}

type chanTracker struct {
	events chan entity.TelemetryEvent
}

func (c *chanTracker) Track(_ context.Context, ev entity.TelemetryEvent) {
	c.events <- ev
}

func (c *chanTracker) next(t *testing.T) entity.TelemetryEvent {
	t.Helper()
	select {
	case ev := <-c.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no telemetry event recorded")
		return entity.TelemetryEvent{}
	}
}

func testValidator() *validator.Validator {
	return validator.NewValidator(config.FileUploadConfig{MaxFileSize: 1024, MaxAudioSize: 16})
}

func TestSynthesize(t *testing.T) {
	tracker := &chanTracker{events: make(chan entity.TelemetryEvent, 1)}
	uc := NewUsecase(speechprovider.NewMockProvider(zap.NewNop()), testValidator(), tracker, time.Second)

	out, err := uc.Synthesize(context.Background(), "hola")
	require.NoError(t, err)
	require.NotEmpty(t, out.Audio)
	require.Equal(t, "mp3", out.Format)
	require.NotEmpty(t, base64.StdEncoding.EncodeToString(out.Audio))

	ev := tracker.next(t)
	require.Equal(t, eventTTSSuccess, ev.Name)
	require.True(t, ev.Success)
}

func TestSynthesize_EmptyText(t *testing.T) {
	uc := NewUsecase(speechprovider.NewMockProvider(zap.NewNop()), testValidator(), nil, time.Second)

	_, err := uc.Synthesize(context.Background(), "")
	require.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = uc.Synthesize(context.Background(), "  \n")
	require.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestSynthesize_ProviderFailure(t *testing.T) {
	tracker := &chanTracker{events: make(chan entity.TelemetryEvent, 1)}
	uc := NewUsecase(&failingProvider{ttsErr: errors.New("quota exceeded")}, testValidator(), tracker, time.Second)

	_, err := uc.Synthesize(context.Background(), "hola")
	require.ErrorIs(t, err, entity.ErrUpstreamFailure)
	require.Equal(t, eventTTSException, tracker.next(t).Name)

	uc = NewUsecase(&failingProvider{}, testValidator(), nil, time.Second)
	_, err = uc.Synthesize(context.Background(), "hola")
	require.ErrorIs(t, err, entity.ErrUpstreamFailure)
}

func TestTranscribe(t *testing.T) {
	uc := NewUsecase(speechprovider.NewMockProvider(zap.NewNop()), testValidator(), nil, time.Second)

	audio := base64.StdEncoding.EncodeToString([]byte("RIFF....WAVE"))

	out, err := uc.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	require.NotEmpty(t, out.Text)

	out, err = uc.Transcribe(context.Background(), "data:audio/wav;base64,"+audio)
	require.NoError(t, err)
	require.NotEmpty(t, out.Text)
}

func TestTranscribe_Rejected(t *testing.T) {
	uc := NewUsecase(speechprovider.NewMockProvider(zap.NewNop()), testValidator(), nil, time.Second)

	_, err := uc.Transcribe(context.Background(), "")
	require.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = uc.Transcribe(context.Background(), "not base64!")
	require.ErrorIs(t, err, entity.ErrInvalidInput)

	tooLong := base64.StdEncoding.EncodeToString(make([]byte, 32))
	_, err = uc.Transcribe(context.Background(), tooLong)
	require.ErrorIs(t, err, entity.ErrPayloadTooLarge)
}

func TestTranscribe_NotRecognized(t *testing.T) {
	uc := NewUsecase(&failingProvider{sttErr: entity.ErrSpeechNotRecognized}, testValidator(), nil, time.Second)

	_, err := uc.Transcribe(context.Background(), base64.StdEncoding.EncodeToString([]byte("noise")))
	require.ErrorIs(t, err, entity.ErrSpeechNotRecognized)
	require.NotErrorIs(t, err, entity.ErrUpstreamFailure)
}
