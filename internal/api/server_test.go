package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	adminapi "github.com/futig/rag-gateway/internal/api/admin"
	askapi "github.com/futig/rag-gateway/internal/api/ask"
	chatapi "github.com/futig/rag-gateway/internal/api/chat"
	documentapi "github.com/futig/rag-gateway/internal/api/document"
	speechapi "github.com/futig/rag-gateway/internal/api/speech"
	systemapi "github.com/futig/rag-gateway/internal/api/system"
	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/futig/rag-gateway/internal/usecase/admin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBackend struct{}

func (stubBackend) Answer(context.Context, *entity.AskRequest) (*entity.Answer, error) {
	return &entity.Answer{Text: "ok", ConversationID: "conv_1", AnsweredAt: time.Now()}, nil
}

func (stubBackend) History(context.Context, string) ([]*entity.ConversationTurn, error) {
	return []*entity.ConversationTurn{}, nil
}

func (stubBackend) Export(_ context.Context, id string, _ entity.ResultFormat) (*entity.Export, error) {
	return &entity.Export{Filename: id + ".md", ContentType: "text/markdown", Content: []byte("# " + id)}, nil
}

func (stubBackend) Reply(context.Context, *entity.ChatMessage) (*entity.ChatReply, error) {
	return &entity.ChatReply{Text: "ok", ConversationID: "conv_1"}, nil
}

func (stubBackend) Transcribe(context.Context, string) (*entity.Transcription, error) {
	return &entity.Transcription{Text: "hola"}, nil
}

func (stubBackend) Synthesize(context.Context, string) (*entity.Synthesis, error) {
	return &entity.Synthesis{Audio: []byte{1}, Format: "mp3"}, nil
}

func (stubBackend) Ingest(context.Context, *entity.UploadDocumentRequest) (*entity.Document, error) {
	return &entity.Document{ID: "d1"}, nil
}

func (stubBackend) Deindex(context.Context, string) error { return nil }

func (stubBackend) List(context.Context) ([]*entity.Document, error) {
	return []*entity.Document{}, nil
}

func (stubBackend) ListPublic(context.Context) ([]*entity.Document, error) {
	return []*entity.Document{}, nil
}

func (stubBackend) Stats(context.Context) (*entity.Stats, error) {
	return &entity.Stats{TotalConversations: 1}, nil
}

func (stubBackend) Health(context.Context) *entity.HealthResponse {
	return &entity.HealthResponse{Status: "ok"}
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	rs := response.NewResponder(false)
	adminUC, err := admin.NewUsecase(
		config.AdminConfig{Username: "admin", Password: "s3cret"},
		repository.NewSessionCache(time.Hour, time.Minute),
	)
	require.NoError(t, err)

	b := stubBackend{}
	return SetupRouter(Handlers{
		Ask:      askapi.NewHandler(b, b, rs),
		Chat:     chatapi.NewHandler(b, rs, 1<<20),
		Speech:   speechapi.NewHandler(b, rs, 1<<20),
		Document: documentapi.NewHandler(b, config.FileUploadConfig{MaxFileSize: 1024, MaxUploadSize: 4096}, rs),
		Admin:    adminapi.NewHandler(adminUC, b, rs),
		System:   systemapi.NewHandler(b, rs),
	}, adminUC, rs, zap.NewNop())
}

func do(srv http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv http.Handler) string {
	t.Helper()
	rec := do(srv, http.MethodPost, "/admin/login", "", `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

var adminRoutes = []struct{ method, path string }{
	{http.MethodGet, "/admin/documents"},
	{http.MethodDelete, "/admin/documents/d1"},
	{http.MethodPost, "/admin/upload-document"},
	{http.MethodGet, "/admin/stats"},
	{http.MethodPost, "/admin/logout"},
	{http.MethodGet, "/admin/conversations/conv_1/export"},
	{http.MethodGet, "/admin/not-a-route"},
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	srv := newServer(t)

	for _, rt := range adminRoutes {
		for _, token := range []string{"", "forged"} {
			rec := do(srv, rt.method, rt.path, token, `{"anything":true}`)
			require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s token=%q", rt.method, rt.path, token)

			var body entity.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Error)
		}
	}
}

func TestAdminRoutes_WithSession(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv)

	rec := do(srv, http.MethodGet, "/admin/documents", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodGet, "/admin/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"totalConversations":1,"totalDocuments":0,"avgResponseTime":0,"conversationsLast24h":0}`, rec.Body.String())

	rec = do(srv, http.MethodGet, "/admin/conversations/conv_1/export?format=md", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/markdown", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "conv_1.md")

	rec = do(srv, http.MethodPost, "/admin/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodGet, "/admin/documents", token, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newServer(t)

	rec := do(srv, http.MethodPost, "/admin/login", "", `{"username":"admin","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	srv := newServer(t)

	for _, path := range []string{"/health", "/stats", "/documents", "/history/conv_1"} {
		rec := do(srv, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := do(srv, http.MethodPost, "/api/messages", "", `{"message":"hola"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"reply":"ok"`)

	rec = do(srv, http.MethodGet, "/docs/swagger.yaml", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "openapi:")
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	for _, path := range []string{"/ask", "/admin/documents"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://chat.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code, path)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost, path)
	}
}

func TestCORSSimpleRequest(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://chat.example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
