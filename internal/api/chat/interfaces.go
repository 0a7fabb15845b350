package chat

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type ChatUsecase interface {
	Reply(ctx context.Context, msg *entity.ChatMessage) (*entity.ChatReply, error)
}
