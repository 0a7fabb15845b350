package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type ConversationUsecase struct {
	conversationRepo repository.ConversationRepository
	formatters       FormatterFactory
}

func NewUsecase(conversationRepo repository.ConversationRepository, formatters FormatterFactory) *ConversationUsecase {
	return &ConversationUsecase{
		conversationRepo: conversationRepo,
		formatters:       formatters,
	}
}

// History returns the turns of a conversation oldest first. An unknown
// conversation yields an empty list.
func (uc *ConversationUsecase) History(ctx context.Context, conversationID string) ([]*entity.ConversationTurn, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, fmt.Errorf("%w: conversation id is required", entity.ErrInvalidInput)
	}

	turns, err := uc.conversationRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	if turns == nil {
		turns = []*entity.ConversationTurn{}
	}
	return turns, nil
}

// Export renders a conversation transcript in the requested format.
func (uc *ConversationUsecase) Export(ctx context.Context, conversationID string, format entity.ResultFormat) (*entity.Export, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	turns, err := uc.History(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, entity.ErrConversationNotFound
	}

	content, err := f.Format(conversationID, turns)
	if err != nil {
		return nil, fmt.Errorf("format transcript: %w", err)
	}

	ctxzap.Info(ctx, "conversation exported",
		zap.String("conversation_id", conversationID),
		zap.String("format", string(format)),
		zap.Int("turns", len(turns)),
	)

	return &entity.Export{
		Filename:    sanitizeID(conversationID) + f.FileExtension(),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
