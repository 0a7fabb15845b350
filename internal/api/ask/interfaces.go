package ask

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type QueryUsecase interface {
	Answer(ctx context.Context, req *entity.AskRequest) (*entity.Answer, error)
}

type ConversationUsecase interface {
	History(ctx context.Context, conversationID string) ([]*entity.ConversationTurn, error)
}
