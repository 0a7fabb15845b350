package indexer

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type BlobReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkWriter is the write side of the vector index.
type ChunkWriter interface {
	Insert(ctx context.Context, chunks []entity.Chunk) error
	DeleteDocument(ctx context.Context, documentID string) error
}
