package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/integration/common"
	pkghttp "github.com/futig/rag-gateway/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Connector calls an OpenAI-compatible embeddings endpoint.
type Connector struct {
	config    config.EmbeddingConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		logger:    logger,
	}
}

// Embed converts one text into a vector.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch converts texts into vectors, preserving input order.
func (c *Connector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	req := embeddingRequest{Input: texts, Model: c.config.Model}
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= len(texts) {
			idx = i
		}
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("embeddings response has an empty vector at %d", idx)
		}
		vectors[idx] = item.Embedding
	}

	ctxzap.Debug(ctx, "texts embedded",
		zap.Int("count", len(texts)),
		zap.Int("dimension", len(vectors[0])),
	)

	return vectors, nil
}
