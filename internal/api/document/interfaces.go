package document

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type IngestUsecase interface {
	Ingest(ctx context.Context, req *entity.UploadDocumentRequest) (*entity.Document, error)
	Deindex(ctx context.Context, documentID string) error
	List(ctx context.Context) ([]*entity.Document, error)
	ListPublic(ctx context.Context) ([]*entity.Document, error)
}
