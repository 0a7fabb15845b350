package repository

import (
	"fmt"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func fromPgUUID(id pgtype.UUID) string {
	return uuid.UUID(id.Bytes).String()
}

const turnColumns = `id, conversation_id, user_id, question, answer, response_time_ms, created_at`

func scanTurn(row pgx.Row) (*entity.ConversationTurn, error) {
	var (
		id   pgtype.UUID
		turn entity.ConversationTurn
	)
	if err := row.Scan(&id, &turn.ConversationID, &turn.UserID, &turn.Question, &turn.Answer,
		&turn.ResponseTimeMs, &turn.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan conversation turn: %w", err)
	}
	turn.ID = fromPgUUID(id)
	return &turn, nil
}

const documentColumns = `id, filename, blob_key, blob_url, content_type, size, indexed,
	uploaded_at, indexed_at, total_chunks, index_error`

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		id  pgtype.UUID
		doc entity.Document
	)
	if err := row.Scan(&id, &doc.Filename, &doc.BlobKey, &doc.BlobURL, &doc.ContentType, &doc.Size,
		&doc.Indexed, &doc.UploadedAt, &doc.IndexedAt, &doc.TotalChunks, &doc.IndexError); err != nil {
		return nil, err
	}
	doc.ID = fromPgUUID(id)
	return &doc, nil
}
