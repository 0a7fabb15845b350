package admin

import (
	"context"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUsecase(t *testing.T, cfg config.AdminConfig) *AdminUsecase {
	t.Helper()
	uc, err := NewUsecase(cfg, repository.NewSessionCache(time.Hour, time.Minute))
	require.NoError(t, err)
	return uc
}

func TestLogin_PlainPassword(t *testing.T) {
	uc := newUsecase(t, config.AdminConfig{Username: "admin", Password: "s3cret"})

	token, err := uc.Login(context.Background(), &entity.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	require.Len(t, token, 2*tokenBytes)

	p, err := uc.Validate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "admin", p.Username)
	require.False(t, p.LoginTime.IsZero())
}

func TestLogin_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	uc := newUsecase(t, config.AdminConfig{Username: "admin", PasswordHash: string(hash)})

	_, err = uc.Login(context.Background(), &entity.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
}

func TestLogin_Rejected(t *testing.T) {
	uc := newUsecase(t, config.AdminConfig{Username: "admin", Password: "s3cret"})

	cases := []*entity.LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "root", Password: "s3cret"},
		{Username: "admin"},
		nil,
	}
	for _, req := range cases {
		_, err := uc.Login(context.Background(), req)
		require.ErrorIs(t, err, entity.ErrInvalidCredentials)
	}
}

func TestLogin_NoPasswordConfigured(t *testing.T) {
	uc := newUsecase(t, config.AdminConfig{Username: "admin"})

	_, err := uc.Login(context.Background(), &entity.LoginRequest{Username: "admin", Password: "anything"})
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestNewUsecase_BadHash(t *testing.T) {
	_, err := NewUsecase(config.AdminConfig{Username: "admin", PasswordHash: "plain"}, repository.NewSessionCache(time.Hour, time.Minute))
	require.Error(t, err)
}

func TestValidateAndRevoke(t *testing.T) {
	uc := newUsecase(t, config.AdminConfig{Username: "admin", Password: "s3cret"})

	_, err := uc.Validate(context.Background(), "")
	require.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = uc.Validate(context.Background(), "deadbeef")
	require.ErrorIs(t, err, entity.ErrUnauthorized)

	token, err := uc.Issue(context.Background(), "admin")
	require.NoError(t, err)

	other, err := uc.Issue(context.Background(), "admin")
	require.NoError(t, err)
	require.NotEqual(t, token, other)

	require.NoError(t, uc.Revoke(context.Background(), token))
	_, err = uc.Validate(context.Background(), token)
	require.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = uc.Validate(context.Background(), other)
	require.NoError(t, err)

	require.NoError(t, uc.Revoke(context.Background(), "never-issued"))
}

func TestSession_Expires(t *testing.T) {
	uc, err := NewUsecase(config.AdminConfig{Username: "admin", Password: "x"},
		repository.NewSessionCache(20*time.Millisecond, time.Minute))
	require.NoError(t, err)

	token, err := uc.Issue(context.Background(), "admin")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := uc.Validate(context.Background(), token)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}
