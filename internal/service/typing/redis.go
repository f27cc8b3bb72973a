package typing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps typing presence in Redis with a TTL equal to the
// freshness window, so expiry needs no sweeping of our own.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func redisKey(chatID string) string {
	return "typing:" + chatID
}

func (s *RedisStore) SetTyping(chatID, userName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.client.Set(ctx, redisKey(chatID), userName, Freshness).Err()
}

func (s *RedisStore) ClearTyping(chatID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.client.Del(ctx, redisKey(chatID)).Err()
}

func (s *RedisStore) IsTyping(chatID string) (Status, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	userName, err := s.client.Get(ctx, redisKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	return Status{Typing: true, UserName: userName}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
