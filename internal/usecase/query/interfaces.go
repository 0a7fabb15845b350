package query

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

// AnswerChain turns a question into answer text. The local retrieval chain
// and the remote RAG connector both satisfy it.
type AnswerChain interface {
	RetrieveAndAnswer(ctx context.Context, question string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]entity.Passage, error)
}

// Generator renders the prompt variables and runs them through the model.
type Generator interface {
	Generate(ctx context.Context, vars map[string]any) (string, error)
}

type Tracker interface {
	Track(ctx context.Context, ev entity.TelemetryEvent)
}
