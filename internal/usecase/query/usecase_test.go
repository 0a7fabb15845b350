package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	answer string
	err    error
	calls  int
}

func (f *fakeChain) RetrieveAndAnswer(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.answer, f.err
}

type memoryConversations struct {
	mu    sync.Mutex
	turns []*entity.ConversationTurn
	err   error
}

func (m *memoryConversations) AppendTurn(_ context.Context, turn *entity.ConversationTurn) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
	return nil
}

func (m *memoryConversations) ListByConversation(_ context.Context, id string) ([]*entity.ConversationTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ConversationTurn
	for _, t := range m.turns {
		if t.ConversationID == id {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryConversations) ConversationStats(context.Context, time.Time) (*entity.ConversationStats, error) {
	return &entity.ConversationStats{}, nil
}

func (m *memoryConversations) Ping(context.Context) error { return nil }

type chanTracker struct {
	events chan entity.TelemetryEvent
}

func newChanTracker() *chanTracker {
	return &chanTracker{events: make(chan entity.TelemetryEvent, 4)}
}

func (c *chanTracker) Track(_ context.Context, ev entity.TelemetryEvent) {
	c.events <- ev
}

func (c *chanTracker) next(t *testing.T) entity.TelemetryEvent {
	t.Helper()
	select {
	case ev := <-c.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no telemetry event recorded")
		return entity.TelemetryEvent{}
	}
}

func TestAnswer_EmptyQuery(t *testing.T) {
	chain := &fakeChain{answer: "x"}
	repo := &memoryConversations{}
	uc := NewUsecase(chain, repo, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := uc.Answer(context.Background(), &entity.AskRequest{Query: q})
		require.ErrorIs(t, err, entity.ErrInvalidInput)
	}
	require.Zero(t, chain.calls)
	require.Empty(t, repo.turns)
}

func TestAnswer_PersistsTurnOnSuccess(t *testing.T) {
	repo := &memoryConversations{}
	tracker := newChanTracker()
	uc := NewUsecase(&fakeChain{answer: "Abrimos de 9 a 18."}, repo, tracker)

	ans, err := uc.Answer(context.Background(), &entity.AskRequest{Query: "  ¿Horario?  "})
	require.NoError(t, err)
	require.Equal(t, "Abrimos de 9 a 18.", ans.Text)
	require.True(t, strings.HasPrefix(ans.ConversationID, "conv_"))
	require.GreaterOrEqual(t, ans.ResponseTimeMs, int64(0))

	require.Len(t, repo.turns, 1)
	turn := repo.turns[0]
	require.Equal(t, "¿Horario?", turn.Question)
	require.Equal(t, ans.Text, turn.Answer)
	require.Equal(t, entity.AnonymousUserID, turn.UserID)
	require.Equal(t, ans.ConversationID, turn.ConversationID)

	ev := tracker.next(t)
	require.Equal(t, eventAskSuccess, ev.Name)
	require.True(t, ev.Success)
	require.Equal(t, ans.ConversationID, ev.ConversationID)
}

func TestAnswer_KeepsCallerIdentifiers(t *testing.T) {
	repo := &memoryConversations{}
	uc := NewUsecase(&fakeChain{answer: "ok"}, repo, nil)

	ans, err := uc.Answer(context.Background(), &entity.AskRequest{
		Query: "hola", ConversationID: "conv_42", UserID: "u-7",
	})
	require.NoError(t, err)
	require.Equal(t, "conv_42", ans.ConversationID)
	require.Equal(t, "u-7", repo.turns[0].UserID)
}

func TestAnswer_ChainFailurePersistsNothing(t *testing.T) {
	repo := &memoryConversations{}
	tracker := newChanTracker()
	chainErr := errors.Join(entity.ErrRetrievalFailure, errors.New("generator timeout"))
	uc := NewUsecase(&fakeChain{err: chainErr}, repo, tracker)

	_, err := uc.Answer(context.Background(), &entity.AskRequest{Query: "hola"})
	require.ErrorIs(t, err, entity.ErrUpstreamFailure)
	require.ErrorIs(t, err, entity.ErrRetrievalFailure)
	require.Empty(t, repo.turns)

	ev := tracker.next(t)
	require.Equal(t, eventAskException, ev.Name)
	require.False(t, ev.Success)
	require.Error(t, ev.Err)
}

func TestAnswer_PersistFailureIsReported(t *testing.T) {
	repo := &memoryConversations{err: errors.New("db down")}
	tracker := newChanTracker()
	uc := NewUsecase(&fakeChain{answer: "ok"}, repo, tracker)

	_, err := uc.Answer(context.Background(), &entity.AskRequest{Query: "hola"})
	require.ErrorContains(t, err, "db down")

	ev := tracker.next(t)
	require.False(t, ev.Success)
	require.ErrorContains(t, ev.Err, "db down")
}

func TestAnswer_ConcurrentConversationsStayOrdered(t *testing.T) {
	repo := &memoryConversations{}
	uc := NewUsecase(&fakeChain{answer: "ok"}, repo, nil)

	var wg sync.WaitGroup
	for _, id := range []string{"conv_a", "conv_b", "conv_c"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := uc.Answer(context.Background(), &entity.AskRequest{Query: "q", ConversationID: id})
				require.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"conv_a", "conv_b", "conv_c"} {
		turns, err := repo.ListByConversation(context.Background(), id)
		require.NoError(t, err)
		require.Len(t, turns, 10)
		for i := 1; i < len(turns); i++ {
			require.False(t, turns[i].CreatedAt.Before(turns[i-1].CreatedAt))
		}
	}
}

func TestNewConversationID_TimeOrdered(t *testing.T) {
	a := NewConversationID(time.UnixMilli(1_700_000_000_000))
	b := NewConversationID(time.UnixMilli(1_700_000_000_001))
	require.True(t, strings.HasPrefix(a, "conv_"))
	require.Len(t, a, len("conv_")+26)
	require.Less(t, a, b)
}
