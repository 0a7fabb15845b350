package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

// AdminUsecase checks admin credentials and manages bearer sessions.
type AdminUsecase struct {
	username     string
	passwordHash []byte
	sessions     repository.SessionStore
	now          func() time.Time
}

// NewUsecase prefers ADMIN_PASSWORD_HASH. A plain ADMIN_PASSWORD is hashed
// once here. With neither set every login is rejected.
func NewUsecase(cfg config.AdminConfig, sessions repository.SessionStore) (*AdminUsecase, error) {
	uc := &AdminUsecase{
		username: cfg.Username,
		sessions: sessions,
		now:      time.Now,
	}

	switch {
	case cfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		uc.passwordHash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		uc.passwordHash = hash
	}

	return uc, nil
}

// Login verifies the credentials and issues a session token.
func (uc *AdminUsecase) Login(ctx context.Context, req *entity.LoginRequest) (string, error) {
	if req == nil || req.Username == "" || req.Password == "" {
		return "", fmt.Errorf("%w: username and password are required", entity.ErrInvalidCredentials)
	}
	if len(uc.passwordHash) == 0 {
		ctxzap.Warn(ctx, "admin login attempted but no admin password is configured")
		return "", entity.ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(uc.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		ctxzap.Warn(ctx, "admin login rejected", zap.String("username", req.Username))
		return "", entity.ErrInvalidCredentials
	}

	token, err := uc.Issue(ctx, req.Username)
	if err != nil {
		return "", err
	}
	ctxzap.Info(ctx, "admin logged in", zap.String("username", req.Username))
	return token, nil
}

// Issue stores a new session for username and returns its token.
func (uc *AdminUsecase) Issue(ctx context.Context, username string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	principal := entity.Principal{Username: username, LoginTime: uc.now().UTC()}
	if err := uc.sessions.SaveSession(ctx, token, principal); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Validate resolves a token to its principal. Unknown, expired and empty
// tokens are all ErrUnauthorized.
func (uc *AdminUsecase) Validate(ctx context.Context, token string) (*entity.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, entity.ErrUnauthorized
	}
	principal, err := uc.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, entity.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: session lookup: %w", entity.ErrUnauthorized, err)
	}
	return principal, nil
}

// Revoke ends a session. Revoking an unknown token is not an error.
func (uc *AdminUsecase) Revoke(ctx context.Context, token string) error {
	if err := uc.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
