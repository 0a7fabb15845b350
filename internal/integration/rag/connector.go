package rag

import (
	"context"
	"fmt"
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
	askEndpoint    = "/ask"
	healthEndpoint = "/health"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Connector delegates question answering to an external RAG service.
type Connector struct {
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.HTTPClientConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg, logger),
		logger:    logger,
	}
}

// RetrieveAndAnswer posts the question to {RAG_SERVICE_URL}/ask. An empty
// answer is replaced by the fallback sentence.
func (c *Connector) RetrieveAndAnswer(ctx context.Context, question string) (string, error) {
	ctxzap.Debug(ctx, "asking external RAG service")

	var resp askResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, askEndpoint, askRequest{Question: question}, &resp); err != nil {
		return "", fmt.Errorf("%w: external rag: %w", entity.ErrRetrievalFailure, err)
	}

	answer := strings.TrimSpace(resp.Answer)
	if answer == "" {
		ctxzap.Warn(ctx, "external RAG service returned an empty answer, using fallback")
		return entity.FallbackAnswer, nil
	}

	ctxzap.Debug(ctx, "external RAG answer received", zap.Int("answer_length", len(answer)))
	return answer, nil
}

// Ping checks the external service health endpoint.
func (c *Connector) Ping(ctx context.Context) error {
	return c.connector.DoRequest(ctx, http.MethodGet, healthEndpoint, nil, nil)
}
