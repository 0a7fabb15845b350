package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	eventAskSuccess   = "ask.success"
	eventAskException = "ask.exception"

	conversationIDPrefix = "conv_"
)

// QueryUsecase answers questions and records each successful exchange.
type QueryUsecase struct {
	chain            AnswerChain
	conversationRepo repository.ConversationRepository
	tracker          Tracker
	now              func() time.Time
}

// NewUsecase accepts a nil tracker when telemetry is disabled.
func NewUsecase(
	chain AnswerChain,
	conversationRepo repository.ConversationRepository,
	tracker Tracker,
) *QueryUsecase {
	return &QueryUsecase{
		chain:            chain,
		conversationRepo: conversationRepo,
		tracker:          tracker,
		now:              time.Now,
	}
}

// Answer validates the question, runs the answer chain and persists the turn.
// A failed chain call persists nothing.
func (uc *QueryUsecase) Answer(ctx context.Context, req *entity.AskRequest) (*entity.Answer, error) {
	question := strings.TrimSpace(req.Query)
	if question == "" {
		return nil, fmt.Errorf("%w: query must not be empty", entity.ErrInvalidInput)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = NewConversationID(uc.now())
	}
	userID := req.UserID
	if userID == "" {
		userID = entity.AnonymousUserID
	}

	ctx = logger.AddFields(ctx, zap.String("conversation_id", conversationID))

	start := uc.now()
	text, err := uc.chain.RetrieveAndAnswer(ctx, question)
	elapsed := uc.now().Sub(start).Milliseconds()
	if err != nil {
		uc.track(ctx, entity.TelemetryEvent{
			Name:           eventAskException,
			ResponseTimeMs: elapsed,
			ConversationID: conversationID,
			Err:            err,
		})
		return nil, fmt.Errorf("%w: %w", entity.ErrUpstreamFailure, err)
	}

	answeredAt := uc.now().UTC()
	turn := &entity.ConversationTurn{
		ConversationID: conversationID,
		UserID:         userID,
		Question:       question,
		Answer:         text,
		ResponseTimeMs: elapsed,
		CreatedAt:      answeredAt,
	}
	if err := uc.conversationRepo.AppendTurn(ctx, turn); err != nil {
		uc.track(ctx, entity.TelemetryEvent{
			Name:           eventAskException,
			ResponseTimeMs: elapsed,
			ConversationID: conversationID,
			Err:            err,
		})
		return nil, fmt.Errorf("persist conversation turn: %w", err)
	}

	uc.track(ctx, entity.TelemetryEvent{
		Name:           eventAskSuccess,
		Success:        true,
		ResponseTimeMs: elapsed,
		ConversationID: conversationID,
	})

	ctxzap.Info(ctx, "question answered", zap.Int64("response_time_ms", elapsed))

	return &entity.Answer{
		Text:           text,
		ConversationID: conversationID,
		ResponseTimeMs: elapsed,
		AnsweredAt:     answeredAt,
	}, nil
}

// track hands the event to the tracker on a detached goroutine so a slow
// or failing sink never delays the response.
func (uc *QueryUsecase) track(ctx context.Context, ev entity.TelemetryEvent) {
	if uc.tracker == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = uc.now()
	}
	go uc.tracker.Track(logger.Detach(ctx), ev)
}

// NewConversationID returns a time-ordered id of the form conv_<ULID>.
func NewConversationID(at time.Time) string {
	return conversationIDPrefix + ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}
