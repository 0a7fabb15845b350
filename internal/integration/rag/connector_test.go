package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	pkghttp "github.com/futig/rag-gateway/pkg/http"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewConnector(config.HTTPClientConfig{Url: srv.URL}, zap.NewNop())
}

func TestRetrieveAndAnswer_ReturnsAnswer(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, askEndpoint, r.URL.Path)
		var req askRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "¿Dónde están?", req.Question)
		_ = json.NewEncoder(w).Encode(askResponse{Answer: "  En La Plata.  "})
	})

	answer, err := c.RetrieveAndAnswer(context.Background(), "¿Dónde están?")
	require.NoError(t, err)
	require.Equal(t, "En La Plata.", answer)
}

func TestRetrieveAndAnswer_EmptyAnswerUsesFallback(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(askResponse{})
	})

	answer, err := c.RetrieveAndAnswer(context.Background(), "hola")
	require.NoError(t, err)
	require.Equal(t, entity.FallbackAnswer, answer)
}

func TestRetrieveAndAnswer_ServerErrorIsRetrievalFailure(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.RetrieveAndAnswer(context.Background(), "hola")
	require.ErrorIs(t, err, entity.ErrRetrievalFailure)

	var httpErr *pkghttp.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestRetrieveAndAnswer_UnreachableKeepsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewConnector(config.HTTPClientConfig{Url: srv.URL}, zap.NewNop())

	_, err := c.RetrieveAndAnswer(context.Background(), "hola")
	require.ErrorIs(t, err, entity.ErrRetrievalFailure)

	var netErr *pkghttp.NetworkError
	require.ErrorAs(t, err, &netErr)
}
