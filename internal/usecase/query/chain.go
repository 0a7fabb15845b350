package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// LocalChain runs embedding, vector search, prompt assembly and generation
// in process. Each call is stateless from the model's point of view.
type LocalChain struct {
	embedder  Embedder
	searcher  VectorSearcher
	assembler *PromptAssembler
	generator Generator
	topK      int
	timeout   time.Duration
}

func NewLocalChain(
	embedder Embedder,
	searcher VectorSearcher,
	assembler *PromptAssembler,
	generator Generator,
	topK int,
	timeout time.Duration,
) *LocalChain {
	return &LocalChain{
		embedder:  embedder,
		searcher:  searcher,
		assembler: assembler,
		generator: generator,
		topK:      topK,
		timeout:   timeout,
	}
}

// RetrieveAndAnswer returns the generator output verbatim, or FallbackAnswer
// when it is blank. Any failing step, including an expired deadline, is
// reported as ErrRetrievalFailure.
func (c *LocalChain) RetrieveAndAnswer(ctx context.Context, question string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	vec, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: embed question: %w", entity.ErrRetrievalFailure, err)
	}

	passages, err := c.searcher.Search(ctx, vec, c.topK)
	if err != nil {
		return "", fmt.Errorf("%w: search passages: %w", entity.ErrRetrievalFailure, err)
	}
	if len(passages) == 0 {
		ctxzap.Warn(ctx, "no passages retrieved, answering without grounding context")
	} else {
		ctxzap.Debug(ctx, "passages retrieved",
			zap.Int("count", len(passages)),
			zap.Float32("nearest_distance", passages[0].EmbeddingDistance),
		)
	}

	answer, err := c.generator.Generate(ctx, c.assembler.Variables(passages, question))
	if err != nil {
		return "", fmt.Errorf("%w: generate answer: %w", entity.ErrRetrievalFailure, err)
	}
	if strings.TrimSpace(answer) == "" {
		ctxzap.Warn(ctx, "generator returned an empty answer, using fallback")
		return entity.FallbackAnswer, nil
	}
	return answer, nil
}
