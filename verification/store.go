package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

var ErrNotFound = errors.New("verification: no pending code")

// Store keeps pending verification secrets until they expire.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	// Take deletes key and reports whether this call removed it.
	Take(ctx context.Context, key string) (bool, error)
	// Incr bumps the counter at key, extends its expiry to ttl and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.WithContext(ctx).Set(key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set: unable to store %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.WithContext(ctx).Get(key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get: unable to read %s: %w", key, err)
	}
	return v, nil
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if err := s.client.WithContext(ctx).Del(keys...).Err(); err != nil {
		return fmt.Errorf("del: unable to delete %v: %w", keys, err)
	}
	return nil
}

func (s *redisStore) Take(ctx context.Context, key string) (bool, error) {
	n, err := s.client.WithContext(ctx).Del(key).Result()
	if err != nil {
		return false, fmt.Errorf("take: unable to delete %s: %w", key, err)
	}
	return n == 1, nil
}

func (s *redisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.WithContext(ctx).TxPipelined(func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(key)
		pipe.Expire(key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("incr: unable to count %s: %w", key, err)
	}
	return incr.Val(), nil
}
