package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/redis/go-redis/v9"
)

var _ SessionStore = &SessionRedis{}

// SessionRedis shares sessions between gateway replicas.
type SessionRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSessionRedis(ctx context.Context, cfg config.SessionConfig) (*SessionRedis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &SessionRedis{client: client, prefix: cfg.RedisKeyPrefix, ttl: cfg.TTL}, nil
}

func (s *SessionRedis) SaveSession(ctx context.Context, token string, principal entity.Principal) error {
	data, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+token, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionRedis) GetSession(ctx context.Context, token string) (*entity.Principal, error) {
	data, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entity.ErrUnauthorized
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var p entity.Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &p, nil
}

func (s *SessionRedis) DeleteSession(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.prefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionRedis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionRedis) Close() error {
	return s.client.Close()
}
