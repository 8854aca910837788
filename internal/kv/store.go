package kv

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidStoreType = errors.New("kv: invalid store type")
	ErrInvalidConfig    = errors.New("kv: invalid store configuration")
)

// UpdateFunc computes the new value of a key from its current value.
// Returning a nil value deletes the key.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Store is a namespaced key-value store. Update applies fn atomically with respect
// to other Updates of the same key.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Update(ctx context.Context, namespace, key string, fn UpdateFunc) error
	Close() error
}

// StoreType selects a Store driver.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeRedis  StoreType = "redis"
)

// StoreOption configures a Store driver.
type StoreOption func(*storeConfig)

type storeConfig struct {
	db          *sql.DB
	redisClient *redis.Client
	redisPrefix string
}

// WithSQLiteDB sets the database used by the sqlite driver. The kv_store table must exist.
func WithSQLiteDB(db *sql.DB) StoreOption {
	return func(c *storeConfig) {
		c.db = db
	}
}

// WithRedisClient sets the client used by the redis driver.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisPrefix overrides the key prefix used by the redis driver.
func WithRedisPrefix(prefix string) StoreOption {
	return func(c *storeConfig) {
		c.redisPrefix = prefix
	}
}

// NewStore creates a Store for the given driver type.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{redisPrefix: "kv"}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return newMemoryStore(), nil
	case StoreTypeSQLite:
		if cfg.db == nil {
			return nil, ErrInvalidConfig
		}
		return newSQLiteStore(cfg.db), nil
	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return newRedisStore(cfg.redisClient, cfg.redisPrefix), nil
	default:
		return nil, ErrInvalidStoreType
	}
}
