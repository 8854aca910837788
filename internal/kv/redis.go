package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 20

type redisStore struct {
	client *redis.Client
	prefix string
}

func newRedisStore(client *redis.Client, prefix string) *redisStore {
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) key(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, namespace, key)
}

func (s *redisStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(namespace, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, namespace, key string) error {
	if err := s.client.Del(ctx, s.key(namespace, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Update uses WATCH/MULTI/EXEC and retries when another client modified the key.
func (s *redisStore) Update(ctx context.Context, namespace, key string, fn UpdateFunc) error {
	k := s.key(namespace, key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			exists = false
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, k)
				return nil
			}
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update key %q: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("failed to update key %q: too many concurrent modifications", key)
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
