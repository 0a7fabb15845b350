package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// IngestUsecase stores uploaded documents and removes them again. Indexing
// happens out of band; an ingested document starts pending.
type IngestUsecase struct {
	documentRepo repository.DocumentRepository
	blobs        BlobStore
	chunks       ChunkRemover
	validator    *validator.Validator
	now          func() time.Time
}

// NewUsecase accepts a nil blob store when storage is not configured and a
// nil chunk remover when no vector index is reachable from the gateway.
func NewUsecase(
	documentRepo repository.DocumentRepository,
	blobs BlobStore,
	chunks ChunkRemover,
	validator *validator.Validator,
) *IngestUsecase {
	return &IngestUsecase{
		documentRepo: documentRepo,
		blobs:        blobs,
		chunks:       chunks,
		validator:    validator,
		now:          time.Now,
	}
}

// Ingest writes the blob first and the metadata record second, so a record
// never points at a missing blob. A failed record write leaves an orphan blob.
func (uc *IngestUsecase) Ingest(ctx context.Context, req *entity.UploadDocumentRequest) (*entity.Document, error) {
	if err := uc.validator.ValidateDocument(req); err != nil {
		return nil, err
	}
	if uc.blobs == nil {
		return nil, fmt.Errorf("%w: blob backend is not configured", entity.ErrStorageUnavailable)
	}

	docID := uuid.NewString()
	key := BlobKey(docID, req.Filename)

	if err := uc.blobs.EnsureContainer(ctx); err != nil {
		return nil, fmt.Errorf("%w: ensure container: %w", entity.ErrStorageUnavailable, err)
	}

	url, err := uc.blobs.Put(ctx, key, req.ContentType, req.Content)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	doc := &entity.Document{
		ID:          docID,
		Filename:    req.Filename,
		BlobKey:     key,
		BlobURL:     url,
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		Indexed:     false,
		UploadedAt:  uc.now().UTC(),
	}
	if err := uc.documentRepo.CreateDocument(ctx, doc); err != nil {
		ctxzap.Error(ctx, "document record not written, blob left orphaned",
			zap.String("blob_key", key), zap.Error(err))
		return nil, fmt.Errorf("create document record: %w", err)
	}

	ctxzap.Info(ctx, "document uploaded",
		zap.String("document_id", docID),
		zap.String("filename", req.Filename),
		zap.Int64("size", doc.Size),
	)
	return doc, nil
}

// Deindex removes the blob, then the record. A blob that is already gone is
// logged and tolerated. Chunk removal from the vector index is best-effort.
func (uc *IngestUsecase) Deindex(ctx context.Context, documentID string) error {
	doc, err := uc.documentRepo.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if uc.blobs != nil {
		if err := uc.blobs.Delete(ctx, doc.BlobKey); err != nil {
			if !errors.Is(err, entity.ErrBlobNotFound) {
				return fmt.Errorf("delete blob: %w", err)
			}
			ctxzap.Warn(ctx, "blob already gone, removing record anyway",
				zap.String("document_id", documentID), zap.String("blob_key", doc.BlobKey))
		}
	} else {
		ctxzap.Warn(ctx, "blob storage not configured, removing record only", zap.String("document_id", documentID))
	}

	if err := uc.documentRepo.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}

	if uc.chunks != nil {
		if err := uc.chunks.DeleteDocument(ctx, documentID); err != nil {
			ctxzap.Warn(ctx, "document chunks not removed from index",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}

	ctxzap.Info(ctx, "document deleted", zap.String("document_id", documentID))
	return nil
}

// List returns every document, newest first.
func (uc *IngestUsecase) List(ctx context.Context) ([]*entity.Document, error) {
	return uc.list(ctx, 0)
}

// ListPublic returns the newest PublicDocumentsLimit documents.
func (uc *IngestUsecase) ListPublic(ctx context.Context) ([]*entity.Document, error) {
	return uc.list(ctx, entity.PublicDocumentsLimit)
}

func (uc *IngestUsecase) list(ctx context.Context, limit int) ([]*entity.Document, error) {
	docs, err := uc.documentRepo.ListDocuments(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []*entity.Document{}
	}
	return docs, nil
}

// BlobKey is the storage key of a document: {documentId}-{filename}.
func BlobKey(documentID, filename string) string {
	return documentID + "-" + validator.SanitizeFilename(filename)
}
