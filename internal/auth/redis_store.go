package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore guarda o token no Redis, expirando junto com o próprio JWT.
type RedisStore struct {
	redis      redisCommander
	key        string
	defaultTTL time.Duration
	now        func() time.Time
}

// NewRedisStore cria store Redis; prefix isola sessões de usuários/máquinas diferentes.
func NewRedisStore(client redisCommander, prefix string, defaultTTL time.Duration) *RedisStore {
	return &RedisStore{
		redis:      client,
		key:        prefix + ChaveToken,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	val, err := s.redis.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	return s.redis.Set(ctx, s.key, token, s.ttl(token)).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.redis.Del(ctx, s.key).Err()
}

func (s *RedisStore) ttl(token string) time.Duration {
	info, err := InspectToken(token)
	if err != nil || info.ExpiresAt.IsZero() {
		return s.defaultTTL
	}
	ttl := info.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		// já expirado: mantém por pouco tempo, o backend responderá 401
		return time.Second
	}
	return ttl
}
