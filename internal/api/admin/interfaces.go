package admin

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type AdminUsecase interface {
	Login(ctx context.Context, req *entity.LoginRequest) (string, error)
	Revoke(ctx context.Context, token string) error
}

type ConversationUsecase interface {
	Export(ctx context.Context, conversationID string, format entity.ResultFormat) (*entity.Export, error)
}
