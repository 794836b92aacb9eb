package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"formkeeper/internal/util"
)

// RedisTokenStore keeps one-shot tokens (confirmation, recovery) in
// Redis with TTL. Consuming a token deletes it atomically so a token
// can only be redeemed once.
type RedisTokenStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenStore builds a Redis-backed one-shot token store.
func NewRedisTokenStore(addr, password string) (*RedisTokenStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("token store redis addr is required")
	}
	return &RedisTokenStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		keyPrefix: "formkeeper:token",
	}, nil
}

// NewToken mints a token bound to purpose and userID.
func (s *RedisTokenStore) NewToken(purpose, userID string, ttl time.Duration) (string, error) {
	token := util.NewID()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, s.key(purpose, token), userID, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeToken resolves and invalidates a token in one step.
func (s *RedisTokenStore) ConsumeToken(purpose, token string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	val, err := s.client.GetDel(ctx, s.key(purpose, token)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisTokenStore) key(purpose, token string) string {
	return s.keyPrefix + ":" + purpose + ":" + token
}
