package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/google/uuid"
)

// ConversationRepository stores question/answer turns. Turns are append-only.
type ConversationRepository interface {
	AppendTurn(ctx context.Context, turn *entity.ConversationTurn) error
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.ConversationTurn, error)
	ConversationStats(ctx context.Context, since time.Time) (*entity.ConversationStats, error)
	Ping(ctx context.Context) error
}

var _ ConversationRepository = &ConversationPostgres{}

type ConversationPostgres struct {
	db DBTX
}

func NewConversationPostgres(db DBTX) *ConversationPostgres {
	return &ConversationPostgres{db: db}
}

func (r *ConversationPostgres) AppendTurn(ctx context.Context, turn *entity.ConversationTurn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	id, err := toPgUUID(turn.ID)
	if err != nil {
		return fmt.Errorf("invalid turn ID: %w", err)
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO conversations (`+turnColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, turn.ConversationID, turn.UserID, turn.Question, turn.Answer, turn.ResponseTimeMs, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append conversation turn: %w", err)
	}
	return nil
}

func (r *ConversationPostgres) ListByConversation(ctx context.Context, conversationID string) ([]*entity.ConversationTurn, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+turnColumns+`
		FROM conversations
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation turns: %w", err)
	}
	defer rows.Close()

	turns := make([]*entity.ConversationTurn, 0)
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation turns: %w", err)
	}
	return turns, nil
}

func (r *ConversationPostgres) ConversationStats(ctx context.Context, since time.Time) (*entity.ConversationStats, error) {
	var stats entity.ConversationStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT conversation_id),
			COUNT(DISTINCT conversation_id) FILTER (WHERE created_at >= $1),
			COALESCE(AVG(response_time_ms), 0)::float8
		FROM conversations`,
		since,
	).Scan(&stats.TotalConversations, &stats.ConversationsLast24h, &stats.AvgResponseTimeMs)
	if err != nil {
		return nil, fmt.Errorf("conversation stats: %w", err)
	}
	return &stats, nil
}

func (r *ConversationPostgres) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
