package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"go.uber.org/zap"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	tokenKey
)

// Authenticator resolves a bearer token to the admin behind it.
type Authenticator interface {
	Validate(ctx context.Context, token string) (*entity.Principal, error)
}

// Auth rejects requests without a valid "Authorization: Bearer <token>"
// header with 401.
func Auth(auth Authenticator, rs *response.Responder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				rs.Error(ctx, w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			principal, err := auth.Validate(ctx, token)
			if err != nil {
				rs.Error(ctx, w, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			ctx = logger.AddFields(ctx, zap.String("admin", principal.Username))
			ctx = context.WithValue(ctx, principalKey, principal)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the admin set by Auth.
func PrincipalFromContext(ctx context.Context) (*entity.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*entity.Principal)
	return p, ok
}

// TokenFromContext returns the bearer token accepted by Auth.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
