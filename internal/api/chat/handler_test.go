package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	got   *entity.ChatMessage
	reply *entity.ChatReply
	err   error
}

func (s *stubChat) Reply(_ context.Context, msg *entity.ChatMessage) (*entity.ChatReply, error) {
	s.got = msg
	return s.reply, s.err
}

func post(t *testing.T, uc ChatUsecase, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, response.NewResponder(false), 1024))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body)))
	return rec
}

func TestMessage_Text(t *testing.T) {
	uc := &stubChat{reply: &entity.ChatReply{Text: "De 9 a 18.", ConversationID: "conv_1"}}

	rec := post(t, uc, `{"message":"¿Horario?","conversationId":"conv_1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "¿Horario?", uc.got.Text)
	require.Nil(t, uc.got.Audio)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "De 9 a 18.", body["reply"])
	require.Equal(t, "conv_1", body["conversationId"])
	require.NotContains(t, body, "audioBase64")
}

func TestMessage_Audio(t *testing.T) {
	uc := &stubChat{reply: &entity.ChatReply{
		Text:        "De 9 a 18.",
		Transcript:  "¿Horario?",
		Audio:       []byte("ID3"),
		AudioFormat: "mp3",
	}}
	audio := base64.StdEncoding.EncodeToString([]byte("OggS"))

	rec := post(t, uc, `{"audioBase64":"data:audio/ogg;base64,`+audio+`","wantAudio":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []byte("OggS"), uc.got.Audio)
	require.True(t, uc.got.WantAudio)

	var body entity.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3")), body.AudioBase64)
	require.Equal(t, "mp3", body.AudioFormat)
	require.Equal(t, "¿Horario?", body.Transcript)
}

func TestMessage_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "malformed json", body: `{"message":`, status: http.StatusBadRequest},
		{name: "bad audio", body: `{"audioBase64":"%%%"}`, status: http.StatusBadRequest},
		{name: "empty message", body: `{"message":""}`, err: entity.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "upstream", body: `{"message":"hola"}`, err: entity.ErrUpstreamFailure, status: http.StatusInternalServerError},
		{name: "too large", body: `{"message":"` + strings.Repeat("a", 2048) + `"}`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, &stubChat{err: tc.err}, tc.body)
			require.Equal(t, tc.status, rec.Code)

			var body entity.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Error)
		})
	}
}
