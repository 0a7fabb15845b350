package conversation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/formatter"
	"github.com/stretchr/testify/require"
)

type stubConversations struct {
	turns map[string][]*entity.ConversationTurn
}

func (s *stubConversations) AppendTurn(context.Context, *entity.ConversationTurn) error { return nil }

func (s *stubConversations) ListByConversation(_ context.Context, id string) ([]*entity.ConversationTurn, error) {
	return s.turns[id], nil
}

func (s *stubConversations) ConversationStats(context.Context, time.Time) (*entity.ConversationStats, error) {
	return &entity.ConversationStats{}, nil
}

func (s *stubConversations) Ping(context.Context) error { return nil }

func newUsecase() *ConversationUsecase {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewUsecase(&stubConversations{turns: map[string][]*entity.ConversationTurn{
		"conv_1": {
			{ConversationID: "conv_1", UserID: "anonymous", Question: "¿Horario?", Answer: "9 a 18", CreatedAt: at},
			{ConversationID: "conv_1", UserID: "anonymous", Question: "¿Sábados?", Answer: "No", CreatedAt: at.Add(time.Minute)},
		},
	}}, formatter.NewFactory())
}

func TestHistory(t *testing.T) {
	uc := newUsecase()

	turns, err := uc.History(context.Background(), "conv_1")
	require.NoError(t, err)
	require.Len(t, turns, 2)

	again, err := uc.History(context.Background(), "conv_1")
	require.NoError(t, err)
	require.Equal(t, turns, again)

	empty, err := uc.History(context.Background(), "conv_unknown")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	_, err = uc.History(context.Background(), " ")
	require.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestExport_Markdown(t *testing.T) {
	exp, err := newUsecase().Export(context.Background(), "conv_1", entity.FormatMarkdown)
	require.NoError(t, err)
	require.Equal(t, "conv_1.md", exp.Filename)

	body := string(exp.Content)
	require.Less(t, strings.Index(body, "¿Horario?"), strings.Index(body, "¿Sábados?"))
}

func TestExport_Errors(t *testing.T) {
	uc := newUsecase()

	_, err := uc.Export(context.Background(), "conv_1", entity.ResultFormat("xls"))
	require.ErrorIs(t, err, entity.ErrUnsupportedFormat)

	_, err = uc.Export(context.Background(), "conv_missing", entity.FormatPDF)
	require.ErrorIs(t, err, entity.ErrConversationNotFound)
}

func TestSanitizeID(t *testing.T) {
	require.Equal(t, "conv_1", sanitizeID("conv_1"))
	require.Equal(t, "a_b_c", sanitizeID("a/b c"))
}
