package ask

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type stubQuery struct {
	answer *entity.Answer
	err    error
	got    *entity.AskRequest
}

func (s *stubQuery) Answer(_ context.Context, req *entity.AskRequest) (*entity.Answer, error) {
	s.got = req
	return s.answer, s.err
}

type stubConversations struct {
	turns []*entity.ConversationTurn
}

func (s *stubConversations) History(_ context.Context, id string) ([]*entity.ConversationTurn, error) {
	if strings.TrimSpace(id) == "" {
		return nil, entity.ErrInvalidInput
	}
	return s.turns, nil
}

func newRouter(q QueryUsecase, c ConversationUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(q, c, response.NewResponder(true)))
	return r
}

func TestAsk(t *testing.T) {
	at := time.Date(2026, 4, 2, 15, 4, 5, 0, time.UTC)
	q := &stubQuery{answer: &entity.Answer{Text: "De 9 a 18.", ConversationID: "conv_1", ResponseTimeMs: 812, AnsweredAt: at}}
	srv := newRouter(q, &stubConversations{})

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"¿Horario?","userId":"u1"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", q.got.UserID)

	var body entity.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, entity.AskResponse{
		Answer:         "De 9 a 18.",
		ConversationID: "conv_1",
		ResponseTimeMs: 812,
		Timestamp:      "2026-04-02T15:04:05Z",
	}, body)
}

func TestAsk_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "malformed json", body: `{"query":`, status: http.StatusBadRequest},
		{name: "empty query", body: `{"query":"  "}`, err: entity.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "upstream", body: `{"query":"hola"}`, err: entity.ErrUpstreamFailure, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newRouter(&stubQuery{err: tc.err}, &stubConversations{})

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tc.body)))

			require.Equal(t, tc.status, rec.Code)
			var body entity.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Error)
		})
	}
}

func TestHistory(t *testing.T) {
	turns := []*entity.ConversationTurn{
		{ConversationID: "conv_1", Question: "a", Answer: "b"},
		{ConversationID: "conv_1", Question: "c", Answer: "d"},
	}
	srv := newRouter(&stubQuery{}, &stubConversations{turns: turns})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/conv_1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body entity.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Conversations, 2)
	require.Equal(t, "c", body.Conversations[1].Question)
}
