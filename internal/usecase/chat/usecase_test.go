package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	last *entity.AskRequest
	err  error
}

func (f *fakeAnswerer) Answer(_ context.Context, req *entity.AskRequest) (*entity.Answer, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	id := req.ConversationID
	if id == "" {
		id = "conv_generated"
	}
	return &entity.Answer{Text: "answer to " + req.Query, ConversationID: id}, nil
}

type fakeSpeech struct {
	transcript string
	sttErr     error
	ttsErr     error
}

func (f *fakeSpeech) TranscribeAudio(context.Context, []byte) (*entity.Transcription, error) {
	if f.sttErr != nil {
		return nil, f.sttErr
	}
	return &entity.Transcription{Text: f.transcript}, nil
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string) (*entity.Synthesis, error) {
	if f.ttsErr != nil {
		return nil, f.ttsErr
	}
	return &entity.Synthesis{Audio: []byte(text), Format: "mp3"}, nil
}

func TestReply_Text(t *testing.T) {
	answerer := &fakeAnswerer{}
	uc := NewUsecase(answerer, &fakeSpeech{})

	reply, err := uc.Reply(context.Background(), &entity.ChatMessage{
		ConversationID: "tg_42",
		UserID:         "7",
		Text:           "  opening hours?  ",
	})
	require.NoError(t, err)
	require.Equal(t, "answer to opening hours?", reply.Text)
	require.Equal(t, "tg_42", reply.ConversationID)
	require.Empty(t, reply.Audio)
	require.Empty(t, reply.Transcript)
	require.Equal(t, "7", answerer.last.UserID)
}

func TestReply_AudioReplacesText(t *testing.T) {
	answerer := &fakeAnswerer{}
	uc := NewUsecase(answerer, &fakeSpeech{transcript: "where are you"})

	reply, err := uc.Reply(context.Background(), &entity.ChatMessage{
		Text:      "ignored",
		Audio:     []byte("OggS"),
		WantAudio: true,
	})
	require.NoError(t, err)
	require.Equal(t, "where are you", answerer.last.Query)
	require.Equal(t, "where are you", reply.Transcript)
	require.Equal(t, []byte("answer to where are you"), reply.Audio)
	require.Equal(t, "mp3", reply.AudioFormat)
	require.Equal(t, "conv_generated", reply.ConversationID)
}

func TestReply_EmptyMessage(t *testing.T) {
	answerer := &fakeAnswerer{}
	uc := NewUsecase(answerer, &fakeSpeech{})

	_, err := uc.Reply(context.Background(), &entity.ChatMessage{Text: "   "})
	require.ErrorIs(t, err, entity.ErrInvalidInput)
	require.Nil(t, answerer.last)

	uc = NewUsecase(answerer, &fakeSpeech{transcript: ""})
	_, err = uc.Reply(context.Background(), &entity.ChatMessage{Audio: []byte("silence")})
	require.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestReply_TranscriptionFailure(t *testing.T) {
	answerer := &fakeAnswerer{}
	uc := NewUsecase(answerer, &fakeSpeech{sttErr: entity.ErrSpeechNotRecognized})

	_, err := uc.Reply(context.Background(), &entity.ChatMessage{Audio: []byte("noise")})
	require.ErrorIs(t, err, entity.ErrSpeechNotRecognized)
	require.Nil(t, answerer.last)
}

func TestReply_AnswerFailure(t *testing.T) {
	uc := NewUsecase(&fakeAnswerer{err: entity.ErrUpstreamFailure}, &fakeSpeech{})

	_, err := uc.Reply(context.Background(), &entity.ChatMessage{Text: "hi"})
	require.ErrorIs(t, err, entity.ErrUpstreamFailure)
}

func TestReply_SynthesisFailureKeepsText(t *testing.T) {
	uc := NewUsecase(&fakeAnswerer{}, &fakeSpeech{ttsErr: errors.New("tts down")})

	reply, err := uc.Reply(context.Background(), &entity.ChatMessage{Text: "hi", WantAudio: true})
	require.NoError(t, err)
	require.Equal(t, "answer to hi", reply.Text)
	require.Empty(t, reply.Audio)
}
