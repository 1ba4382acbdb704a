package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client from a URL and verifies connectivity.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisStore keeps pending dialogs in Redis so they survive restarts and
// are shared across instances. Keys expire after the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) buildKey(userKey string) string {
	return "dialog:" + userKey
}

func (s *RedisStore) Get(ctx context.Context, userKey string) (*Pending, error) {
	val, err := s.client.Get(ctx, s.buildKey(userKey)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var pending Pending
	if err := json.Unmarshal([]byte(val), &pending); err != nil {
		return nil, fmt.Errorf("invalid pending dialog: %w", err)
	}
	return &pending, nil
}

func (s *RedisStore) Set(ctx context.Context, userKey string, pending *Pending) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshaling pending dialog: %w", err)
	}

	if err := s.client.Set(ctx, s.buildKey(userKey), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userKey string) error {
	if err := s.client.Del(ctx, s.buildKey(userKey)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
