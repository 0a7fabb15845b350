package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/jackc/pgx/v5"
)

// DocumentRepository stores uploaded document metadata and its indexing state.
// A limit of zero or less means no limit.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *entity.Document) error
	GetDocument(ctx context.Context, id string) (*entity.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]*entity.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	CountDocuments(ctx context.Context) (int64, error)
	ListPending(ctx context.Context, limit int) ([]*entity.Document, error)
	MarkIndexed(ctx context.Context, id string, totalChunks int, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

var _ DocumentRepository = &DocumentPostgres{}

type DocumentPostgres struct {
	db DBTX
}

func NewDocumentPostgres(db DBTX) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

func (r *DocumentPostgres) CreateDocument(ctx context.Context, doc *entity.Document) error {
	id, err := toPgUUID(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid document ID: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO documents (id, filename, blob_key, blob_url, content_type, size, indexed, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, doc.Filename, doc.BlobKey, doc.BlobURL, doc.ContentType, doc.Size, doc.Indexed, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *DocumentPostgres) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return nil, entity.ErrDocumentNotFound
	}

	doc, err := scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, pgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *DocumentPostgres) ListDocuments(ctx context.Context, limit int) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return r.queryDocuments(ctx, "list documents", query, args...)
}

func (r *DocumentPostgres) DeleteDocument(ctx context.Context, id string) error {
	pgID, err := toPgUUID(id)
	if err != nil {
		return entity.ErrDocumentNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentPostgres) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// ListPending returns the oldest documents that are neither indexed nor failed.
func (r *DocumentPostgres) ListPending(ctx context.Context, limit int) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE indexed = FALSE AND index_error IS NULL
		ORDER BY uploaded_at ASC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return r.queryDocuments(ctx, "list pending documents", query, args...)
}

func (r *DocumentPostgres) MarkIndexed(ctx context.Context, id string, totalChunks int, at time.Time) error {
	pgID, err := toPgUUID(id)
	if err != nil {
		return entity.ErrDocumentNotFound
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET indexed = TRUE, indexed_at = $2, total_chunks = $3, index_error = NULL
		WHERE id = $1`,
		pgID, at, totalChunks,
	)
	if err != nil {
		return fmt.Errorf("mark document indexed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentPostgres) MarkFailed(ctx context.Context, id string, reason string) error {
	pgID, err := toPgUUID(id)
	if err != nil {
		return entity.ErrDocumentNotFound
	}

	tag, err := r.db.Exec(ctx, `UPDATE documents SET index_error = $2 WHERE id = $1 AND indexed = FALSE`, pgID, reason)
	if err != nil {
		return fmt.Errorf("mark document failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, op, query string, args ...any) ([]*entity.Document, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	docs := make([]*entity.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}
