package ingest

import "context"

// BlobStore is the durable home of uploaded files.
type BlobStore interface {
	EnsureContainer(ctx context.Context) error
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// ChunkRemover drops a document's chunks from the retrieval index.
type ChunkRemover interface {
	DeleteDocument(ctx context.Context, documentID string) error
}
