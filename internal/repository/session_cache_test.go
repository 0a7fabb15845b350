package repository

import (
	"context"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestSessionCache_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewSessionCache(time.Hour, time.Minute)
	login := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveSession(ctx, "tok", entity.Principal{Username: "admin", LoginTime: login}))

	p, err := s.GetSession(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, "admin", p.Username)
	require.Equal(t, login, p.LoginTime)

	require.NoError(t, s.DeleteSession(ctx, "tok"))
	_, err = s.GetSession(ctx, "tok")
	require.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestSessionCache_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewSessionCache(20*time.Millisecond, time.Hour)

	require.NoError(t, s.SaveSession(ctx, "tok", entity.Principal{Username: "admin"}))
	time.Sleep(40 * time.Millisecond)

	_, err := s.GetSession(ctx, "tok")
	require.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestSessionCache_UnknownToken(t *testing.T) {
	_, err := NewSessionCache(time.Hour, time.Minute).GetSession(context.Background(), "nope")
	require.ErrorIs(t, err, entity.ErrUnauthorized)
}
