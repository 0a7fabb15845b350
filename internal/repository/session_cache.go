package repository

import (
	"context"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/patrickmn/go-cache"
)

// SessionStore maps admin bearer tokens to the principal that logged in.
// Unknown or expired tokens yield entity.ErrUnauthorized.
type SessionStore interface {
	SaveSession(ctx context.Context, token string, principal entity.Principal) error
	GetSession(ctx context.Context, token string) (*entity.Principal, error)
	DeleteSession(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

var _ SessionStore = &SessionCache{}

// SessionCache keeps sessions in process memory. Expired entries are
// evicted every cleanupInterval.
type SessionCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionCache(ttl, cleanupInterval time.Duration) *SessionCache {
	return &SessionCache{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func (s *SessionCache) SaveSession(_ context.Context, token string, principal entity.Principal) error {
	s.cache.Set(token, principal, s.ttl)
	return nil
}

func (s *SessionCache) GetSession(_ context.Context, token string) (*entity.Principal, error) {
	v, ok := s.cache.Get(token)
	if !ok {
		return nil, entity.ErrUnauthorized
	}
	p, ok := v.(entity.Principal)
	if !ok {
		return nil, entity.ErrUnauthorized
	}
	return &p, nil
}

func (s *SessionCache) DeleteSession(_ context.Context, token string) error {
	s.cache.Delete(token)
	return nil
}

func (s *SessionCache) Ping(context.Context) error {
	return nil
}
